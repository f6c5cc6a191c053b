// Package e2e 提供端到端测试
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paixian/paixian/internal/ingest"
	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
	"github.com/paixian/paixian/pkg/stats"
	"github.com/paixian/paixian/pkg/validator"
)

const pointsCSV = `id,name,address,latitude,longitude,duration_min,frequency
P1,门店甲,上海市黄浦区,31.2304,121.4737,45,2
P2,门店乙,上海市静安区,31.2404,121.4837,30,2
P3,门店丙,上海市徐汇区,31.2504,121.4937,60,1
P4,门店丁,上海市长宁区,31.2204,121.4637,40,1
P5,门店戊,上海市虹口区,31.2604,121.5037,50,2
P6,门店己,上海市杨浦区,31.2704,121.5137,35,1
`

// TestFullPlanningWorkflow 测试从CSV到验证通过的完整排线流程
func TestFullPlanningWorkflow(t *testing.T) {
	// 1. 写入并加载点位CSV
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(csvPath, []byte(pointsCSV), 0644); err != nil {
		t.Fatalf("写入CSV失败: %v", err)
	}

	points, err := ingest.LoadFile(csvPath)
	if err != nil {
		t.Fatalf("加载CSV失败: %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("期望6个点位，实际: %d", len(points))
	}

	// 2. 生成排线方案
	engine := planner.New(planner.DefaultConfig())
	params := model.Parameters{
		StartDate:   "2026-03-02", // 周一
		HorizonDays: 14,
	}

	result := engine.Optimize(context.Background(), points, params)
	if !result.Success {
		t.Fatalf("排线应成功，错误: %s", result.Error)
	}

	// 频次合计 2+2+1+1+2+1 = 9
	if result.Summary.TotalPoints != 9 {
		t.Errorf("期望拜访总次数9，实际: %d", result.Summary.TotalPoints)
	}
	if result.Summary.TotalRoutes == 0 || result.Summary.TotalEmployees == 0 {
		t.Fatalf("汇总异常: %+v", result.Summary)
	}

	// 3. 结构化验证
	issues := validator.NewPlanValidator(nil).ValidateAgainstCatalog(result, points)
	if validator.HasErrors(issues) {
		t.Errorf("生成结果应通过验证，问题: %+v", issues)
	}

	// 4. 路线级不变量
	for _, route := range result.Routes {
		if route.DayOfWeek == "Saturday" || route.DayOfWeek == "Sunday" {
			t.Errorf("路线 %s 落在周末: %s", route.RouteID, route.Date)
		}
		if !strings.HasPrefix(route.EmployeeID, "业务员_") {
			t.Errorf("路线 %s 的业务员命名异常: %s", route.RouteID, route.EmployeeID)
		}
		got := route.ServiceTimeMin + route.TravelTimeMin
		if diff := route.TotalTimeMin - got; diff > 0.01 || diff < -0.01 {
			t.Errorf("路线 %s 总时长不等于服务+路途: %v != %v", route.RouteID, route.TotalTimeMin, got)
		}
	}

	// 5. 统计分析
	workload := stats.NewWorkloadAnalyzer().Analyze(result.Routes)
	if len(workload.EmployeeStats) != result.Summary.TotalEmployees {
		t.Errorf("负载分析业务员数不一致: %d != %d",
			len(workload.EmployeeStats), result.Summary.TotalEmployees)
	}
	if workload.BalanceScore < 0 || workload.BalanceScore > 100 {
		t.Errorf("均衡评分超出范围: %v", workload.BalanceScore)
	}

	workingDays, err := planner.WorkingDays(params.StartDate, params.HorizonDays)
	if err != nil {
		t.Fatalf("工作日历生成失败: %v", err)
	}
	coverage := stats.NewCoverageAnalyzer().Analyze(result.Routes, workingDays)
	if coverage.PlannedDays == 0 {
		t.Error("覆盖分析应至少有一个已排日")
	}
	if coverage.PlannedDays > coverage.TotalWorkingDays {
		t.Errorf("已排日不应超过工作日总数: %d > %d",
			coverage.PlannedDays, coverage.TotalWorkingDays)
	}
}

// TestFullWorkflow_Deterministic 测试同一输入两次排线结果一致
func TestFullWorkflow_Deterministic(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(csvPath, []byte(pointsCSV), 0644); err != nil {
		t.Fatalf("写入CSV失败: %v", err)
	}

	run := func() *model.PlanResult {
		points, err := ingest.LoadFile(csvPath)
		if err != nil {
			t.Fatalf("加载CSV失败: %v", err)
		}
		engine := planner.New(planner.DefaultConfig())
		return engine.Optimize(context.Background(), points, model.Parameters{
			StartDate:   "2026-03-02",
			HorizonDays: 14,
		})
	}

	first := run()
	second := run()

	if !first.Success || !second.Success {
		t.Fatal("两次排线都应成功")
	}
	if len(first.Routes) != len(second.Routes) {
		t.Fatalf("两次路线数不同: %d != %d", len(first.Routes), len(second.Routes))
	}
	for i := range first.Routes {
		a, b := first.Routes[i], second.Routes[i]
		if a.RouteID != b.RouteID || a.Date != b.Date || a.EmployeeID != b.EmployeeID {
			t.Errorf("第%d条路线不一致: %+v != %+v", i, a, b)
		}
	}
}
