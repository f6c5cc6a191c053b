// Package planner 实现拜访路线优化管线
package planner

import (
	"sort"

	"github.com/paixian/paixian/pkg/model"
)

// DefaultClusterFillRatio 聚类阶段的服务时长填充上限
// 聚类只累计服务时长，路途时间在排序阶段才计算，
// 留出余量避免整日总时长系统性超出预算。经验值，可配置覆盖
const DefaultClusterFillRatio = 0.8

// ClusterByTime 将一天的拜访任务切分为受工时约束的聚类
// 按到当日质心的距离升序贪心累计，服务时长超过
// fillRatio*maxHoursPerDay*60 时另起新聚类。
// 质心距离排序是地理聚拢的廉价近似；单个超长点位独立成簇，不丢弃
func ClusterByTime(visits []*model.Visit, maxHoursPerDay, fillRatio float64) [][]*model.Visit {
	if len(visits) == 0 {
		return nil
	}
	if fillRatio <= 0 {
		fillRatio = DefaultClusterFillRatio
	}

	center := centroid(visits)

	sorted := make([]*model.Visit, len(visits))
	copy(sorted, visits)
	// 稳定排序，距离相同保持输入顺序，保证结果确定
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Location.Distance(center) < sorted[j].Location.Distance(center)
	})

	maxMinutes := maxHoursPerDay * 60 * fillRatio

	var clusters [][]*model.Visit
	var current []*model.Visit
	var currentTime float64

	for _, v := range sorted {
		if currentTime+v.DurationMin > maxMinutes {
			if len(current) > 0 {
				clusters = append(clusters, current)
			}
			current = []*model.Visit{v}
			currentTime = v.DurationMin
		} else {
			current = append(current, v)
			currentTime += v.DurationMin
		}
	}

	if len(current) > 0 {
		clusters = append(clusters, current)
	}

	return clusters
}

// centroid 计算拜访任务的坐标质心
func centroid(visits []*model.Visit) model.Location {
	var sumLat, sumLon float64
	for _, v := range visits {
		sumLat += v.Location.Latitude
		sumLon += v.Location.Longitude
	}
	n := float64(len(visits))
	return model.Location{
		Latitude:  sumLat / n,
		Longitude: sumLon / n,
	}
}
