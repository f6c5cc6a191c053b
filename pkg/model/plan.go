// Package model 定义排线引擎的核心数据模型
package model

// Parameters 规划参数
type Parameters struct {
	MaxHoursPerDay float64 `json:"max_hours_per_day"`
	MaxDaysPerWeek int     `json:"max_days_per_week"`
	StartDate      string  `json:"start_date"`   // YYYY-MM-DD
	HorizonDays    int     `json:"horizon_days"` // 规划周期（日历天）
}

// Summary 规划结果汇总
type Summary struct {
	TotalEmployees       int     `json:"total_employees"`
	TotalRoutes          int     `json:"total_routes"`
	TotalPoints          int     `json:"total_points"` // 点位拜访总次数
	AvgRoutesPerEmployee float64 `json:"avg_routes_per_employee"`
	TotalServiceHours    float64 `json:"total_service_hours"`
	TotalTravelHours     float64 `json:"total_travel_hours"`
}

// EmployeeSummary 业务员汇总
type EmployeeSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	TotalRoutes int    `json:"total_routes"`
	TotalDays   int    `json:"total_days"`
}

// PlanResult 规划结果
// 成功时携带完整结果，失败时只携带错误说明，不返回部分结果
type PlanResult struct {
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Parameters *Parameters       `json:"parameters,omitempty"`
	Summary    *Summary          `json:"summary,omitempty"`
	Routes     []*Route          `json:"routes,omitempty"`
	Employees  []EmployeeSummary `json:"employees,omitempty"`
}
