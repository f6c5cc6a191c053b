package planner

import (
	"fmt"
	"testing"

	"github.com/paixian/paixian/pkg/model"
)

func dayRoutes(dates ...string) []*model.Route {
	routes := make([]*model.Route, len(dates))
	for i, d := range dates {
		routes[i] = &model.Route{
			RouteID: fmt.Sprintf("R1_%d", i+1),
			Date:    d,
		}
	}
	return routes
}

func TestAssignRoutes_WeeklyDayCap(t *testing.T) {
	// 10个工作日各1条路线，周上限5天 => 恰好2名业务员
	routes := dayRoutes(
		"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06",
		"2026-03-09", "2026-03-10", "2026-03-11", "2026-03-12", "2026-03-13",
	)

	final, employees := AssignRoutes(routes, 5)

	if len(employees) != 2 {
		t.Fatalf("业务员数 = %d, 期望 2", len(employees))
	}
	if len(final) != 10 {
		t.Errorf("分配后路线数 = %d, 期望 10", len(final))
	}
	for _, emp := range employees {
		if c := emp.DayCount(); c > 5 {
			t.Errorf("%s 工作天数 = %d, 超过上限5", emp.Name, c)
		}
	}
}

func TestAssignRoutes_DayBatchAtomic(t *testing.T) {
	// 同一天的多条路线必须整批给同一业务员
	routes := []*model.Route{
		{RouteID: "R1_1", Date: "2026-03-02"},
		{RouteID: "R1_2", Date: "2026-03-02"},
		{RouteID: "R1_3", Date: "2026-03-02"},
		{RouteID: "R1_1", Date: "2026-03-03"},
	}

	final, employees := AssignRoutes(routes, 5)

	if len(employees) != 1 {
		t.Fatalf("业务员数 = %d, 期望 1", len(employees))
	}

	byDay := make(map[string]map[string]bool)
	for _, r := range final {
		if byDay[r.Date] == nil {
			byDay[r.Date] = make(map[string]bool)
		}
		byDay[r.Date][r.EmployeeID] = true
	}
	for day, emps := range byDay {
		if len(emps) != 1 {
			t.Errorf("日期 %s 的路线分散给了 %d 名业务员", day, len(emps))
		}
	}
}

func TestAssignRoutes_FirstFit(t *testing.T) {
	// 第1人满5天后第6天落到第2人，第2人有空位时优先复用
	routes := dayRoutes(
		"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06",
		"2026-03-09", "2026-03-10",
	)

	_, employees := AssignRoutes(routes, 5)

	if len(employees) != 2 {
		t.Fatalf("业务员数 = %d, 期望 2", len(employees))
	}
	if d := employees[0].DayCount(); d != 5 {
		t.Errorf("业务员_1 工作天数 = %d, 期望 5", d)
	}
	if d := employees[1].DayCount(); d != 2 {
		t.Errorf("业务员_2 工作天数 = %d, 期望 2", d)
	}
}

func TestAssignRoutes_RewritesOwnership(t *testing.T) {
	routes := dayRoutes("2026-03-02", "2026-03-03")

	final, employees := AssignRoutes(routes, 5)

	for _, r := range final {
		if r.EmployeeID != employees[0].Name {
			t.Errorf("路线 %s 业务员 = %s, 期望 %s", r.RouteID, r.EmployeeID, employees[0].Name)
		}
	}
}

func TestAssignRoutes_Empty(t *testing.T) {
	final, employees := AssignRoutes(nil, 5)
	if final != nil || employees != nil {
		t.Errorf("空路线列表应返回nil: routes=%v employees=%v", final, employees)
	}
}
