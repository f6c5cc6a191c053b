package model

import "testing"

func TestEmployee_DayCount(t *testing.T) {
	emp := NewEmployee(1)
	emp.Routes = []*Route{
		{RouteID: "R1_1", Date: "2026-03-02"},
		{RouteID: "R1_2", Date: "2026-03-02"},
		{RouteID: "R1_1", Date: "2026-03-03"},
	}

	if c := emp.DayCount(); c != 2 {
		t.Errorf("去重天数 = %d, 期望 2", c)
	}
}

func TestEmployee_CanTakeDay(t *testing.T) {
	emp := NewEmployee(1)
	emp.Routes = []*Route{
		{Date: "2026-03-02"},
		{Date: "2026-03-03"},
	}

	tests := []struct {
		name     string
		date     string
		maxDays  int
		expected bool
	}{
		{"新日期有余量", "2026-03-04", 5, true},
		{"已到天数上限", "2026-03-04", 2, false},
		{"同一天不重复接单", "2026-03-02", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emp.CanTakeDay(tt.date, tt.maxDays); got != tt.expected {
				t.Errorf("CanTakeDay(%s, %d) = %v, 期望 %v", tt.date, tt.maxDays, got, tt.expected)
			}
		})
	}
}

func TestEmployee_TakeDay(t *testing.T) {
	emp := NewEmployee(2)
	routes := []*Route{
		{RouteID: "R1_1", Date: "2026-03-02"},
		{RouteID: "R1_2", Date: "2026-03-02"},
	}

	emp.TakeDay(routes)

	if len(emp.Routes) != 2 {
		t.Fatalf("业务员应持有2条路线，实际 %d", len(emp.Routes))
	}
	for _, r := range emp.Routes {
		if r.EmployeeID != emp.Name {
			t.Errorf("路线业务员应改写为 %s，实际 %s", emp.Name, r.EmployeeID)
		}
	}
}

func TestEmployee_WorkingDays(t *testing.T) {
	emp := NewEmployee(1)
	emp.Routes = []*Route{
		{Date: "2026-03-05"},
		{Date: "2026-03-02"},
		{Date: "2026-03-05"},
	}

	days := emp.WorkingDays()
	if len(days) != 2 || days[0] != "2026-03-02" || days[1] != "2026-03-05" {
		t.Errorf("工作日应去重升序，实际 %v", days)
	}
}

func TestEmployeeName(t *testing.T) {
	if name := EmployeeName(3); name != "业务员_3" {
		t.Errorf("EmployeeName(3) = %q", name)
	}
}
