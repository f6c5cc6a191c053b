// Package validator 提供排线结果验证功能
package validator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/paixian/paixian/pkg/model"
)

// IssueType 问题类型
type IssueType string

const (
	IssueDayCap       IssueType = "day_cap"       // 周工作天数超限
	IssueSplitDay     IssueType = "split_day"     // 同一天的路线分属多名业务员
	IssueTimeMismatch IssueType = "time_mismatch" // 时间字段不自洽
	IssueOvertime     IssueType = "overtime"      // 单条路线超出日工时预算
	IssueWeekend      IssueType = "weekend"       // 路线排在周末
	IssueSummary      IssueType = "summary"       // 汇总与明细不一致
	IssueConservation IssueType = "conservation"  // 拜访任务数与点位频次不符
)

// Issue 验证问题
type Issue struct {
	Type       IssueType `json:"type"`
	Severity   string    `json:"severity"` // error/warning
	EmployeeID string    `json:"employee_id,omitempty"`
	RouteID    string    `json:"route_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	Message    string    `json:"message"`
}

// PlanValidator 排线结果验证器
type PlanValidator struct {
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	TimeToleranceMin float64 // 时间字段比对容差（分钟）
	CheckWeekend     bool    // 是否检查周末排线
}

// DefaultValidatorConfig 返回默认配置
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		TimeToleranceMin: 0.01,
		CheckWeekend:     true,
	}
}

// NewPlanValidator 创建排线结果验证器
func NewPlanValidator(config *ValidatorConfig) *PlanValidator {
	if config == nil {
		config = DefaultValidatorConfig()
	}
	return &PlanValidator{config: config}
}

// Validate 验证排线结果的内部一致性
func (v *PlanValidator) Validate(result *model.PlanResult) []Issue {
	if result == nil || !result.Success {
		return nil
	}

	var issues []Issue
	issues = append(issues, v.checkRoutes(result)...)
	issues = append(issues, v.checkDayBatches(result.Routes)...)
	issues = append(issues, v.checkDayCap(result)...)
	issues = append(issues, v.checkSummary(result)...)
	return issues
}

// ValidateAgainstCatalog 校验结果相对点位目录的拜访守恒
// 期望拜访数为各点频次之和；全零频次按每点一次计
func (v *PlanValidator) ValidateAgainstCatalog(result *model.PlanResult, points []*model.Point) []Issue {
	issues := v.Validate(result)
	if result == nil || !result.Success {
		return issues
	}

	expected := 0
	for _, p := range points {
		expected += p.Frequency
	}
	if expected == 0 {
		expected = len(points)
	}

	actual := 0
	for _, r := range result.Routes {
		actual += len(r.Points)
	}

	if actual != expected {
		issues = append(issues, Issue{
			Type:     IssueConservation,
			Severity: "error",
			Message:  fmt.Sprintf("结果含 %d 个拜访，点位频次合计 %d", actual, expected),
		})
	}

	return issues
}

// checkRoutes 逐条检查路线的时间字段
func (v *PlanValidator) checkRoutes(result *model.PlanResult) []Issue {
	var issues []Issue
	maxMin := result.Parameters.MaxHoursPerDay * 60

	for _, r := range result.Routes {
		if r.TotalPoints != len(r.Points) {
			issues = append(issues, Issue{
				Type:     IssueTimeMismatch,
				Severity: "error",
				RouteID:  r.RouteID,
				Date:     r.Date,
				Message:  fmt.Sprintf("路线 %s 点数字段 %d 与点位列表长度 %d 不符", r.RouteID, r.TotalPoints, len(r.Points)),
			})
		}

		if math.Abs(r.TotalTimeMin-(r.ServiceTimeMin+r.TravelTimeMin)) > v.config.TimeToleranceMin {
			issues = append(issues, Issue{
				Type:     IssueTimeMismatch,
				Severity: "error",
				RouteID:  r.RouteID,
				Date:     r.Date,
				Message:  fmt.Sprintf("路线 %s 总时长 %.1f 不等于服务 %.1f + 路途 %.1f", r.RouteID, r.TotalTimeMin, r.ServiceTimeMin, r.TravelTimeMin),
			})
		}

		// 聚类只约束服务时长，加上路途后超出日预算只作提示
		if maxMin > 0 && r.TotalTimeMin > maxMin {
			issues = append(issues, Issue{
				Type:       IssueOvertime,
				Severity:   "warning",
				EmployeeID: r.EmployeeID,
				RouteID:    r.RouteID,
				Date:       r.Date,
				Message:    fmt.Sprintf("路线 %s 总时长 %.1f 分钟，超出日预算 %.0f 分钟", r.RouteID, r.TotalTimeMin, maxMin),
			})
		}

		if v.config.CheckWeekend && isWeekend(r.Date) {
			issues = append(issues, Issue{
				Type:       IssueWeekend,
				Severity:   "error",
				EmployeeID: r.EmployeeID,
				RouteID:    r.RouteID,
				Date:       r.Date,
				Message:    fmt.Sprintf("路线 %s 排在周末 %s", r.RouteID, r.Date),
			})
		}
	}

	return issues
}

// checkDayBatches 检查同一天的路线是否整批归属同一业务员
func (v *PlanValidator) checkDayBatches(routes []*model.Route) []Issue {
	var issues []Issue

	byDay := make(map[string]map[string]bool)
	for _, r := range routes {
		if byDay[r.Date] == nil {
			byDay[r.Date] = make(map[string]bool)
		}
		byDay[r.Date][r.EmployeeID] = true
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, date := range dates {
		if len(byDay[date]) > 1 {
			issues = append(issues, Issue{
				Type:     IssueSplitDay,
				Severity: "error",
				Date:     date,
				Message:  fmt.Sprintf("日期 %s 的路线分属 %d 名业务员", date, len(byDay[date])),
			})
		}
	}

	return issues
}

// checkDayCap 检查周工作天数上限
func (v *PlanValidator) checkDayCap(result *model.PlanResult) []Issue {
	var issues []Issue
	maxDays := result.Parameters.MaxDaysPerWeek
	if maxDays <= 0 {
		return issues
	}

	days := make(map[string]map[string]bool)
	for _, r := range result.Routes {
		if days[r.EmployeeID] == nil {
			days[r.EmployeeID] = make(map[string]bool)
		}
		days[r.EmployeeID][r.Date] = true
	}

	ids := make([]string, 0, len(days))
	for id := range days {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if len(days[id]) > maxDays {
			issues = append(issues, Issue{
				Type:       IssueDayCap,
				Severity:   "error",
				EmployeeID: id,
				Message:    fmt.Sprintf("%s 工作 %d 天，超过上限 %d 天", id, len(days[id]), maxDays),
			})
		}
	}

	return issues
}

// checkSummary 检查汇总与明细的一致性
func (v *PlanValidator) checkSummary(result *model.PlanResult) []Issue {
	var issues []Issue
	s := result.Summary
	if s == nil {
		return []Issue{{
			Type:     IssueSummary,
			Severity: "error",
			Message:  "成功结果缺少汇总",
		}}
	}

	if s.TotalRoutes != len(result.Routes) {
		issues = append(issues, Issue{
			Type:     IssueSummary,
			Severity: "error",
			Message:  fmt.Sprintf("汇总路线数 %d 与明细 %d 不一致", s.TotalRoutes, len(result.Routes)),
		})
	}
	if s.TotalEmployees != len(result.Employees) {
		issues = append(issues, Issue{
			Type:     IssueSummary,
			Severity: "error",
			Message:  fmt.Sprintf("汇总人数 %d 与明细 %d 不一致", s.TotalEmployees, len(result.Employees)),
		})
	}

	points := 0
	for _, r := range result.Routes {
		points += len(r.Points)
	}
	if s.TotalPoints != points {
		issues = append(issues, Issue{
			Type:     IssueSummary,
			Severity: "error",
			Message:  fmt.Sprintf("汇总拜访数 %d 与明细 %d 不一致", s.TotalPoints, points),
		})
	}

	return issues
}

// isWeekend 判断日期是否是周末
func isWeekend(dateStr string) bool {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return false
	}
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// HasErrors 判断问题列表中是否存在 error 级别的问题
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
