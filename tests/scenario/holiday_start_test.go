package scenario

import (
	"context"
	"testing"

	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
)

// TestWeekendOnlyWindow 周末窗口场景
// 规划窗口只覆盖周末，应返回结构化失败而不是panic或空成功
func TestWeekendOnlyWindow(t *testing.T) {
	points := []*model.Point{
		makePoint("H1", 31.2304, 121.4737, 45, 1),
	}

	engine := planner.New(planner.DefaultConfig())
	result := engine.Optimize(context.Background(), points, model.Parameters{
		StartDate:   "2026-03-07", // 周六
		HorizonDays: 2,            // 周六+周日
	})

	if result.Success {
		t.Fatal("周末窗口不应排线成功")
	}
	if result.Error != "没有可规划的工作日" {
		t.Errorf("期望无工作日失败，实际: %s", result.Error)
	}
	if len(result.Routes) != 0 {
		t.Errorf("失败结果不应携带路线: %d", len(result.Routes))
	}
}

// TestEmptyCatalog 空目录场景
// 没有任何点位时应返回未生成路线的结构化失败
func TestEmptyCatalog(t *testing.T) {
	engine := planner.New(planner.DefaultConfig())
	result := engine.Optimize(context.Background(), nil, model.Parameters{
		StartDate:   "2026-03-02",
		HorizonDays: 7,
	})

	if result.Success {
		t.Fatal("空目录不应排线成功")
	}
	if result.Error != "未能生成任何路线" {
		t.Errorf("期望无路线失败，实际: %s", result.Error)
	}
}

// TestCancelledPlan 取消场景
// 上游取消后应返回取消的结构化失败
func TestCancelledPlan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := planner.New(planner.DefaultConfig())
	result := engine.Optimize(ctx, []*model.Point{
		makePoint("C1", 31.2304, 121.4737, 45, 1),
	}, model.Parameters{
		StartDate:   "2026-03-02",
		HorizonDays: 7,
	})

	if result.Success {
		t.Fatal("已取消的规划不应成功")
	}
	if result.Error != "规划已取消" {
		t.Errorf("期望取消失败，实际: %s", result.Error)
	}
}
