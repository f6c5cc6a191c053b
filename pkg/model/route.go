// Package model 定义排线引擎的核心数据模型
package model

import (
	"fmt"
	"sort"
)

// Route 单日路线
// 一组已排序的拜访任务及其时间指标
type Route struct {
	RouteID        string   `json:"route_id"`
	EmployeeID     string   `json:"employee_id"`
	Date           string   `json:"date"`        // YYYY-MM-DD
	DayOfWeek      string   `json:"day_of_week"` // Monday...
	Points         []*Visit `json:"points"`
	TotalPoints    int      `json:"total_points"`
	ServiceTimeMin float64  `json:"service_time_min"`
	TravelTimeMin  float64  `json:"travel_time_min"`
	TotalTimeMin   float64  `json:"total_time_min"`
	TotalTimeHours float64  `json:"total_time_hours"`
}

// IsOnDate 检查路线是否在指定日期
func (r *Route) IsOnDate(date string) bool {
	return r.Date == date
}

// EmployeeName 生成业务员名称
func EmployeeName(id int) string {
	return fmt.Sprintf("业务员_%d", id)
}

// Employee 业务员
// 持有分配给它的路线；路线只通过 EmployeeID 反向引用
type Employee struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Routes []*Route `json:"routes"`
}

// NewEmployee 创建业务员
func NewEmployee(id int) *Employee {
	return &Employee{
		ID:   id,
		Name: EmployeeName(id),
	}
}

// WorkingDays 返回已分配的去重日期（升序）
func (e *Employee) WorkingDays() []string {
	seen := make(map[string]bool)
	for _, r := range e.Routes {
		seen[r.Date] = true
	}
	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// DayCount 返回已分配的去重天数
func (e *Employee) DayCount() int {
	seen := make(map[string]bool)
	for _, r := range e.Routes {
		seen[r.Date] = true
	}
	return len(seen)
}

// HasDay 检查是否已在某天有路线
func (e *Employee) HasDay(date string) bool {
	for _, r := range e.Routes {
		if r.Date == date {
			return true
		}
	}
	return false
}

// CanTakeDay 检查能否再接下某天的整批路线
// 约束：去重天数不超过每周上限，且同一天不重复接单
func (e *Employee) CanTakeDay(date string, maxDaysPerWeek int) bool {
	return e.DayCount() < maxDaysPerWeek && !e.HasDay(date)
}

// TakeDay 接下某天的整批路线（整天原子分配，不拆分）
func (e *Employee) TakeDay(routes []*Route) {
	for _, r := range routes {
		r.EmployeeID = e.Name
		e.Routes = append(e.Routes, r)
	}
}
