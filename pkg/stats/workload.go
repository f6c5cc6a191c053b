// Package stats 提供排线结果的统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paixian/paixian/pkg/model"
)

// WorkloadMetrics 业务员负载指标
type WorkloadMetrics struct {
	// 工时公平性
	WorkloadGini        float64 `json:"workload_gini"`          // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance    float64 `json:"workload_variance"`      // 工时方差
	WorkloadStdDev      float64 `json:"workload_std_dev"`       // 工时标准差
	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"` // 人均工时
	MaxHours            float64 `json:"max_hours"`              // 最大工时
	MinHours            float64 `json:"min_hours"`              // 最小工时
	HoursRange          float64 `json:"hours_range"`            // 工时极差

	// 业务员级别统计
	EmployeeStats []EmployeeWorkload `json:"employee_stats"`

	// 综合评分
	BalanceScore float64 `json:"balance_score"` // 负载均衡评分 (0-100)
}

// EmployeeWorkload 单个业务员的负载统计
type EmployeeWorkload struct {
	EmployeeID   string  `json:"employee_id"`
	RouteCount   int     `json:"route_count"`
	PointCount   int     `json:"point_count"`
	WorkingDays  int     `json:"working_days"`
	ServiceHours float64 `json:"service_hours"`
	TravelHours  float64 `json:"travel_hours"`
	TotalHours   float64 `json:"total_hours"`
	Deviation    float64 `json:"deviation"` // 与人均工时的偏差百分比
}

// WorkloadAnalyzer 负载分析器
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建负载分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 分析排线结果中各业务员的负载分布
func (w *WorkloadAnalyzer) Analyze(routes []*model.Route) *WorkloadMetrics {
	if len(routes) == 0 {
		return &WorkloadMetrics{BalanceScore: 100}
	}

	employeeStats := w.calculateEmployeeStats(routes)

	hours := make([]float64, len(employeeStats))
	for i, stat := range employeeStats {
		hours[i] = stat.TotalHours
	}

	avgHours := w.calculateMean(hours)
	variance := w.calculateVariance(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := w.calculateRange(hours)

	for i := range employeeStats {
		if avgHours > 0 {
			employeeStats[i].Deviation = (employeeStats[i].TotalHours - avgHours) / avgHours * 100
		}
	}

	gini := w.calculateGini(hours)

	return &WorkloadMetrics{
		WorkloadGini:        gini,
		WorkloadVariance:    variance,
		WorkloadStdDev:      stdDev,
		AvgHoursPerEmployee: avgHours,
		MaxHours:            maxHours,
		MinHours:            minHours,
		HoursRange:          maxHours - minHours,
		EmployeeStats:       employeeStats,
		BalanceScore:        w.calculateBalanceScore(gini, stdDev, avgHours),
	}
}

// calculateEmployeeStats 按业务员聚合路线指标
func (w *WorkloadAnalyzer) calculateEmployeeStats(routes []*model.Route) []EmployeeWorkload {
	statMap := make(map[string]*EmployeeWorkload)
	daysMap := make(map[string]map[string]bool)

	for _, r := range routes {
		stat, exists := statMap[r.EmployeeID]
		if !exists {
			stat = &EmployeeWorkload{EmployeeID: r.EmployeeID}
			statMap[r.EmployeeID] = stat
			daysMap[r.EmployeeID] = make(map[string]bool)
		}

		stat.RouteCount++
		stat.PointCount += len(r.Points)
		stat.ServiceHours += r.ServiceTimeMin / 60
		stat.TravelHours += r.TravelTimeMin / 60
		stat.TotalHours += r.TotalTimeMin / 60
		daysMap[r.EmployeeID][r.Date] = true
	}

	result := make([]EmployeeWorkload, 0, len(statMap))
	for id, stat := range statMap {
		stat.WorkingDays = len(daysMap[id])
		stat.ServiceHours = model.Round2(stat.ServiceHours)
		stat.TravelHours = model.Round2(stat.TravelHours)
		stat.TotalHours = model.Round2(stat.TotalHours)
		result = append(result, *stat)
	}

	// 按工时降序，工时相同按ID升序保证稳定输出
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalHours != result[j].TotalHours {
			return result[i].TotalHours > result[j].TotalHours
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})

	return result
}

// calculateMean 计算平均值
func (w *WorkloadAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func (w *WorkloadAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func (w *WorkloadAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func (w *WorkloadAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateBalanceScore 计算负载均衡评分
func (w *WorkloadAnalyzer) calculateBalanceScore(gini, stdDev, avgHours float64) float64 {
	const (
		giniWeight = 0.7
		cvWeight   = 0.3
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	giniScore := (1 - gini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := giniWeight*giniScore + cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// ComparePlans 比较两个排线方案的负载均衡程度
func (w *WorkloadAnalyzer) ComparePlans(plan1, plan2 []*model.Route) map[string]float64 {
	metrics1 := w.Analyze(plan1)
	metrics2 := w.Analyze(plan2)

	return map[string]float64{
		"workload_gini_diff":  metrics2.WorkloadGini - metrics1.WorkloadGini,
		"balance_score_diff":  metrics2.BalanceScore - metrics1.BalanceScore,
		"plan1_balance_score": metrics1.BalanceScore,
		"plan2_balance_score": metrics2.BalanceScore,
	}
}
