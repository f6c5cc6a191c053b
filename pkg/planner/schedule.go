// Package planner 实现拜访路线优化管线
package planner

import (
	"github.com/paixian/paixian/pkg/model"
)

// ExpandVisits 按拜访频次将点位展开为拜访任务
// 全零回退策略：所有点位频次均为 0 时，按每个点位拜访一次处理，
// 频次 0 被归一化为"拜访一次"而不是"不拜访"
func ExpandVisits(points []*model.Point) []*model.Visit {
	var visits []*model.Visit
	for _, p := range points {
		for i := 0; i < p.Frequency; i++ {
			visits = append(visits, p.NewVisit())
		}
	}

	if len(visits) == 0 {
		for _, p := range points {
			visits = append(visits, p.NewVisit())
		}
	}

	return visits
}

// DistributeVisits 将拜访任务轮转分配到工作日
// 第 i 个任务落到第 i mod D 个工作日，保证各日任务数相差不超过 1
func DistributeVisits(visits []*model.Visit, days []string) map[string][]*model.Visit {
	byDay := make(map[string][]*model.Visit)
	if len(days) == 0 {
		return byDay
	}

	for i, v := range visits {
		day := days[i%len(days)]
		byDay[day] = append(byDay[day], v)
	}

	return byDay
}
