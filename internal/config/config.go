// Package config 提供配置管理
// 环境变量优先，可选地从 YAML 文件加载基线配置
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Planner  PlannerConfig  `yaml:"planner"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
// Enabled 为 false 时服务以纯内存模式运行，不落库
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit   int           `yaml:"rate_limit"`
	Timeout     time.Duration `yaml:"timeout"`
	AuthEnabled bool          `yaml:"auth_enabled"`
	CORS        CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// PlannerConfig 排线引擎配置
type PlannerConfig struct {
	MaxHoursPerDay   float64       `yaml:"max_hours_per_day"`
	MaxDaysPerWeek   int           `yaml:"max_days_per_week"`
	HorizonDays      int           `yaml:"horizon_days"`
	AvgSpeedKmh      float64       `yaml:"avg_speed_kmh"`
	ClusterFillRatio float64       `yaml:"cluster_fill_ratio"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 加载配置
// PAIXIAN_CONFIG 指向 YAML 文件时先读文件，环境变量覆盖其中的值
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("PAIXIAN_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// defaults 返回内置默认配置
func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:     "paixian",
			Env:      "development",
			Port:     7021,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Enabled:         false,
			Host:            "localhost",
			Port:            5432,
			Name:            "paixian",
			User:            "paixian",
			Password:        "paixian123",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		API: APIConfig{
			RateLimit:   100,
			Timeout:     30 * time.Second,
			AuthEnabled: false,
			CORS: CORSConfig{
				Enabled: true,
				Origins: []string{"*"},
			},
		},
		Planner: PlannerConfig{
			MaxHoursPerDay:   8,
			MaxDaysPerWeek:   5,
			HorizonDays:      90,
			AvgSpeedKmh:      30,
			ClusterFillRatio: 0.8,
			RequestTimeout:   30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// applyEnv 用环境变量覆盖配置
func applyEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Port = getEnvInt("APP_PORT", cfg.App.Port)
	cfg.App.LogLevel = getEnv("APP_LOG_LEVEL", cfg.App.LogLevel)

	cfg.Database.Enabled = getEnvBool("DB_ENABLED", cfg.Database.Enabled)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.API.RateLimit = getEnvInt("API_RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.Timeout = getEnvDuration("API_TIMEOUT", cfg.API.Timeout)
	cfg.API.AuthEnabled = getEnvBool("API_AUTH_ENABLED", cfg.API.AuthEnabled)
	cfg.API.CORS.Enabled = getEnvBool("API_CORS_ENABLED", cfg.API.CORS.Enabled)

	cfg.Planner.MaxHoursPerDay = getEnvFloat("PLANNER_MAX_HOURS_PER_DAY", cfg.Planner.MaxHoursPerDay)
	cfg.Planner.MaxDaysPerWeek = getEnvInt("PLANNER_MAX_DAYS_PER_WEEK", cfg.Planner.MaxDaysPerWeek)
	cfg.Planner.HorizonDays = getEnvInt("PLANNER_HORIZON_DAYS", cfg.Planner.HorizonDays)
	cfg.Planner.AvgSpeedKmh = getEnvFloat("PLANNER_AVG_SPEED_KMH", cfg.Planner.AvgSpeedKmh)
	cfg.Planner.ClusterFillRatio = getEnvFloat("PLANNER_CLUSTER_FILL_RATIO", cfg.Planner.ClusterFillRatio)
	cfg.Planner.RequestTimeout = getEnvDuration("PLANNER_REQUEST_TIMEOUT", cfg.Planner.RequestTimeout)

	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Path = getEnv("METRICS_PATH", cfg.Metrics.Path)
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
