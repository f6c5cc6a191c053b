package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	if cfg.App.Name != "paixian" || cfg.App.Port != 7021 {
		t.Errorf("应用默认配置错误: %+v", cfg.App)
	}
	if cfg.Planner.MaxHoursPerDay != 8 || cfg.Planner.MaxDaysPerWeek != 5 {
		t.Errorf("排线默认配置错误: %+v", cfg.Planner)
	}
	if cfg.Planner.HorizonDays != 90 || cfg.Planner.ClusterFillRatio != 0.8 {
		t.Errorf("排线默认配置错误: %+v", cfg.Planner)
	}
	if cfg.Database.Enabled {
		t.Error("默认应为纯内存模式")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("PLANNER_HORIZON_DAYS", "30")
	t.Setenv("DB_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.App.Port != 9000 {
		t.Errorf("端口 = %d, 期望 9000", cfg.App.Port)
	}
	if cfg.Planner.HorizonDays != 30 {
		t.Errorf("规划周期 = %d, 期望 30", cfg.Planner.HorizonDays)
	}
	if !cfg.Database.Enabled {
		t.Error("DB_ENABLED=true 应开启数据库")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
app:
  name: paixian-test
  port: 8088
planner:
  max_hours_per_day: 6
  horizon_days: 14
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	t.Setenv("PAIXIAN_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.App.Name != "paixian-test" || cfg.App.Port != 8088 {
		t.Errorf("文件配置未生效: %+v", cfg.App)
	}
	if cfg.Planner.MaxHoursPerDay != 6 || cfg.Planner.HorizonDays != 14 {
		t.Errorf("文件排线配置未生效: %+v", cfg.Planner)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	content := "app:\n  port: 8088\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	t.Setenv("PAIXIAN_CONFIG", path)
	t.Setenv("APP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.App.Port != 9100 {
		t.Errorf("环境变量应覆盖文件: %d", cfg.App.Port)
	}
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("PAIXIAN_CONFIG", "/nonexistent/config.yaml")
	if _, err := Load(); err == nil {
		t.Error("不存在的配置文件应报错")
	}
}

func TestConfig_EnvHelpers(t *testing.T) {
	cfg := &Config{App: AppConfig{Env: "production"}}
	if !cfg.IsProduction() || cfg.IsDevelopment() || cfg.IsTest() {
		t.Errorf("环境判断错误: %s", cfg.App.Env)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432,
		Name: "paixian", User: "u", Password: "p", SSLMode: "disable",
	}
	expected := "host=localhost port=5432 user=u password=p dbname=paixian sslmode=disable"
	if dsn := db.DSN(); dsn != expected {
		t.Errorf("DSN = %q", dsn)
	}
}
