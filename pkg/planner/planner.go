// Package planner 实现拜访路线优化管线
//
// 管线分四步：拜访任务按工作日轮转分配 → 单日任务按工时聚类 →
// 聚类内最近邻排序 → 路线按天整批分配给最少业务员。
// 全程单线程顺序执行，同样输入产出同样结果
package planner

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paixian/paixian/pkg/errors"
	"github.com/paixian/paixian/pkg/logger"
	"github.com/paixian/paixian/pkg/model"
)

// Config 排线引擎配置
// ClusterFillRatio 与质心起点选择均为启发式经验值，允许按场景调整
type Config struct {
	MaxHoursPerDay   float64 `yaml:"max_hours_per_day"`
	MaxDaysPerWeek   int     `yaml:"max_days_per_week"`
	HorizonDays      int     `yaml:"horizon_days"`
	AvgSpeedKmh      float64 `yaml:"avg_speed_kmh"`
	ClusterFillRatio float64 `yaml:"cluster_fill_ratio"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxHoursPerDay:   8,
		MaxDaysPerWeek:   5,
		HorizonDays:      90,
		AvgSpeedKmh:      30,
		ClusterFillRatio: DefaultClusterFillRatio,
	}
}

// Planner 排线引擎
type Planner struct {
	cfg Config
	log *logger.PlannerLogger
}

// New 创建排线引擎，零值配置项回落到默认值
func New(cfg Config) *Planner {
	def := DefaultConfig()
	if cfg.MaxHoursPerDay <= 0 {
		cfg.MaxHoursPerDay = def.MaxHoursPerDay
	}
	if cfg.MaxDaysPerWeek <= 0 {
		cfg.MaxDaysPerWeek = def.MaxDaysPerWeek
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = def.HorizonDays
	}
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = def.AvgSpeedKmh
	}
	if cfg.ClusterFillRatio <= 0 {
		cfg.ClusterFillRatio = def.ClusterFillRatio
	}
	return &Planner{
		cfg: cfg,
		log: logger.NewPlannerLogger(),
	}
}

// Optimize 执行完整优化管线
// 两种业务失败（无工作日、无路线）作为结构化结果返回，
// 不产生部分结果
func (p *Planner) Optimize(ctx context.Context, points []*model.Point, params model.Parameters) *model.PlanResult {
	startTime := time.Now()
	planID := uuid.New().String()[:8]

	p.normalizeParams(&params)
	p.log.StartPlan(planID, len(points), params.MaxHoursPerDay, params.MaxDaysPerWeek)

	// 1. 构建工作日历
	days, err := WorkingDays(params.StartDate, params.HorizonDays)
	if err != nil {
		p.log.PlanFailed(planID, err.Error())
		return failure(err.Error(), &params)
	}
	if len(days) == 0 {
		p.log.PlanFailed(planID, errors.ErrNoWorkingDays.Message)
		return failure(errors.ErrNoWorkingDays.Message, &params)
	}

	// 2. 展开并分配拜访任务
	visits := ExpandVisits(points)
	byDay := DistributeVisits(visits, days)
	p.log.VisitsDistributed(planID, len(visits), len(days))

	// 3. 逐日聚类和排序
	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var allRoutes []*model.Route
	for _, date := range dates {
		if ctx.Err() != nil {
			p.log.PlanFailed(planID, "规划已取消")
			return failure("规划已取消", &params)
		}

		dayVisits := byDay[date]
		if len(dayVisits) == 0 {
			continue
		}

		clusters := ClusterByTime(dayVisits, params.MaxHoursPerDay, p.cfg.ClusterFillRatio)

		routeNo := 1
		dayRoutes := 0
		for _, cluster := range clusters {
			if len(cluster) == 0 {
				continue
			}
			ordered := SequenceVisits(cluster)
			// 业务员编号在分配阶段改写，这里先占位为 1
			route := BuildRoute(ordered, 1, routeNo, p.cfg.AvgSpeedKmh)
			route.Date = date
			route.DayOfWeek = DayOfWeek(date)
			allRoutes = append(allRoutes, route)
			routeNo++
			dayRoutes++
		}

		p.log.DayPlanned(planID, date, len(dayVisits), dayRoutes)
	}

	if len(allRoutes) == 0 {
		p.log.PlanFailed(planID, errors.ErrNoRoutesCreated.Message)
		return failure(errors.ErrNoRoutesCreated.Message, &params)
	}

	// 4. 分配业务员
	finalRoutes, employees := AssignRoutes(allRoutes, params.MaxDaysPerWeek)

	// 5. 汇总
	result := &model.PlanResult{
		Success:    true,
		Parameters: &params,
		Summary:    buildSummary(finalRoutes, employees),
		Routes:     finalRoutes,
		Employees:  buildEmployeeSummaries(employees),
	}

	p.log.PlanComplete(planID, time.Since(startTime), len(finalRoutes), len(employees))
	return result
}

// normalizeParams 补全规划参数默认值
func (p *Planner) normalizeParams(params *model.Parameters) {
	if params.MaxHoursPerDay <= 0 {
		params.MaxHoursPerDay = p.cfg.MaxHoursPerDay
	}
	if params.MaxDaysPerWeek <= 0 {
		params.MaxDaysPerWeek = p.cfg.MaxDaysPerWeek
	}
	if params.HorizonDays <= 0 {
		params.HorizonDays = p.cfg.HorizonDays
	}
	if params.StartDate == "" {
		params.StartDate = time.Now().Format(DateLayout)
	}
}

// buildSummary 聚合路线指标
func buildSummary(routes []*model.Route, employees []*model.Employee) *model.Summary {
	s := &model.Summary{
		TotalEmployees: len(employees),
		TotalRoutes:    len(routes),
	}

	var serviceMin, travelMin float64
	for _, r := range routes {
		s.TotalPoints += len(r.Points)
		serviceMin += r.ServiceTimeMin
		travelMin += r.TravelTimeMin
	}

	if len(employees) > 0 {
		s.AvgRoutesPerEmployee = model.Round1(float64(len(routes)) / float64(len(employees)))
	}
	s.TotalServiceHours = model.Round1(serviceMin / 60)
	s.TotalTravelHours = model.Round1(travelMin / 60)

	return s
}

// buildEmployeeSummaries 生成业务员汇总列表
func buildEmployeeSummaries(employees []*model.Employee) []model.EmployeeSummary {
	summaries := make([]model.EmployeeSummary, len(employees))
	for i, emp := range employees {
		summaries[i] = model.EmployeeSummary{
			ID:          emp.ID,
			Name:        emp.Name,
			TotalRoutes: len(emp.Routes),
			TotalDays:   emp.DayCount(),
		}
	}
	return summaries
}

// failure 构建失败结果
func failure(message string, params *model.Parameters) *model.PlanResult {
	return &model.PlanResult{
		Success:    false,
		Error:      message,
		Parameters: params,
	}
}
