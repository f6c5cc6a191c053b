// Package stats 提供排线结果的统计分析功能
package stats

import (
	"sort"

	"github.com/paixian/paixian/pkg/model"
)

// CoverageMetrics 日历覆盖指标
type CoverageMetrics struct {
	// 整体覆盖
	TotalWorkingDays int     `json:"total_working_days"` // 周期内工作日总数
	PlannedDays      int     `json:"planned_days"`       // 有路线的工作日数
	OverallCoverage  float64 `json:"overall_coverage"`   // 日历覆盖率 (%)

	// 按日期统计
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 按星期分布
	WeekdayDistribution map[string]int `json:"weekday_distribution"` // 各星期的路线数

	// 负载分布
	AvgPointsPerDay float64 `json:"avg_points_per_day"` // 日均拜访点数
	BusiestDay      string  `json:"busiest_day"`        // 总时长最大的工作日
	TravelShare     float64 `json:"travel_share"`       // 路途时间占比 (%)

	// 问题识别
	EmptyDays []string `json:"empty_days"` // 无任何路线的工作日
}

// DayCoverage 单个工作日的排线情况
type DayCoverage struct {
	Date         string  `json:"date"`
	DayOfWeek    string  `json:"day_of_week"`
	Routes       int     `json:"routes"`
	Points       int     `json:"points"`
	ServiceHours float64 `json:"service_hours"`
	TravelHours  float64 `json:"travel_hours"`
	TotalHours   float64 `json:"total_hours"`
}

// CoverageAnalyzer 日历覆盖分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建日历覆盖分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析路线在工作日历上的分布
// workingDays 为周期内的全部工作日，用于识别空档日
func (c *CoverageAnalyzer) Analyze(routes []*model.Route, workingDays []string) *CoverageMetrics {
	metrics := &CoverageMetrics{
		TotalWorkingDays:    len(workingDays),
		DailyCoverage:       make(map[string]DayCoverage),
		WeekdayDistribution: make(map[string]int),
	}
	if len(routes) == 0 {
		metrics.EmptyDays = append(metrics.EmptyDays, workingDays...)
		return metrics
	}

	dailyStats := make(map[string]*DayCoverage)
	var totalPoints int
	var serviceMin, travelMin float64

	for _, r := range routes {
		day, exists := dailyStats[r.Date]
		if !exists {
			day = &DayCoverage{Date: r.Date, DayOfWeek: r.DayOfWeek}
			dailyStats[r.Date] = day
		}
		day.Routes++
		day.Points += len(r.Points)
		day.ServiceHours += r.ServiceTimeMin / 60
		day.TravelHours += r.TravelTimeMin / 60
		day.TotalHours += r.TotalTimeMin / 60

		metrics.WeekdayDistribution[r.DayOfWeek]++
		totalPoints += len(r.Points)
		serviceMin += r.ServiceTimeMin
		travelMin += r.TravelTimeMin
	}

	var busiest string
	var busiestHours float64
	dates := make([]string, 0, len(dailyStats))
	for date := range dailyStats {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day := dailyStats[date]
		day.ServiceHours = model.Round2(day.ServiceHours)
		day.TravelHours = model.Round2(day.TravelHours)
		day.TotalHours = model.Round2(day.TotalHours)
		metrics.DailyCoverage[date] = *day

		if day.TotalHours > busiestHours {
			busiestHours = day.TotalHours
			busiest = date
		}
	}

	metrics.PlannedDays = len(dailyStats)
	if metrics.TotalWorkingDays > 0 {
		metrics.OverallCoverage = model.Round1(float64(metrics.PlannedDays) / float64(metrics.TotalWorkingDays) * 100)
	}
	metrics.AvgPointsPerDay = model.Round1(float64(totalPoints) / float64(metrics.PlannedDays))
	metrics.BusiestDay = busiest
	if total := serviceMin + travelMin; total > 0 {
		metrics.TravelShare = model.Round1(travelMin / total * 100)
	}

	for _, wd := range workingDays {
		if _, ok := dailyStats[wd]; !ok {
			metrics.EmptyDays = append(metrics.EmptyDays, wd)
		}
	}

	return metrics
}
