package scenario

import (
	"context"
	"fmt"
	"testing"

	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
)

// TestHighFrequencyChain 高频连锁场景
// 高频次拜访产生超过单人周容量的任务天数，应自动扩充业务员
func TestHighFrequencyChain(t *testing.T) {
	// 10家门店每家每周期拜访4次，40个任务铺满两周10个工作日
	var points []*model.Point
	for i := 0; i < 10; i++ {
		lat := 31.2300 + float64(i)*0.01
		lon := 121.4700 + float64(i)*0.01
		points = append(points, makePoint(fmt.Sprintf("F%d", i+1), lat, lon, 60, 4))
	}

	engine := planner.New(planner.DefaultConfig())
	result := engine.Optimize(context.Background(), points, model.Parameters{
		MaxDaysPerWeek: 5,
		StartDate:      "2026-03-02",
		HorizonDays:    14,
	})

	if !result.Success {
		t.Fatalf("排线应成功，错误: %s", result.Error)
	}
	if result.Summary.TotalPoints != 40 {
		t.Errorf("期望拜访总次数40，实际: %d", result.Summary.TotalPoints)
	}

	// 10个任务日、单人最多5天，至少需要2名业务员
	if result.Summary.TotalEmployees < 2 {
		t.Errorf("期望至少2名业务员，实际: %d", result.Summary.TotalEmployees)
	}

	// 每人去重天数不超过周上限
	days := make(map[string]map[string]bool)
	for _, route := range result.Routes {
		if days[route.EmployeeID] == nil {
			days[route.EmployeeID] = make(map[string]bool)
		}
		days[route.EmployeeID][route.Date] = true
	}
	for emp, d := range days {
		if len(d) > 5 {
			t.Errorf("业务员 %s 分配了%d天，超过上限5天", emp, len(d))
		}
	}

	// 同一天的所有路线都归属同一业务员（整天原子分配）
	dayOwner := make(map[string]string)
	for _, route := range result.Routes {
		if owner, ok := dayOwner[route.Date]; ok {
			if owner != route.EmployeeID {
				t.Errorf("日期 %s 被拆给多名业务员: %s / %s", route.Date, owner, route.EmployeeID)
			}
		} else {
			dayOwner[route.Date] = route.EmployeeID
		}
	}
}

// TestZeroFrequencyFallback 全零频次场景
// 目录里全部频次为0时按每点一次兜底
func TestZeroFrequencyFallback(t *testing.T) {
	points := []*model.Point{
		makePoint("Z1", 31.2304, 121.4737, 30, 0),
		makePoint("Z2", 31.2404, 121.4837, 30, 0),
		makePoint("Z3", 31.2504, 121.4937, 30, 0),
	}

	engine := planner.New(planner.DefaultConfig())
	result := engine.Optimize(context.Background(), points, model.Parameters{
		StartDate:   "2026-03-02",
		HorizonDays: 7,
	})

	if !result.Success {
		t.Fatalf("排线应成功，错误: %s", result.Error)
	}
	if result.Summary.TotalPoints != 3 {
		t.Errorf("全零频次应兜底为每点一次，期望3次，实际: %d", result.Summary.TotalPoints)
	}
}
