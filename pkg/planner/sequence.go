// Package planner 实现拜访路线优化管线
package planner

import (
	"fmt"

	"github.com/paixian/paixian/pkg/model"
)

// SequenceVisits 用最近邻启发式确定聚类内的拜访顺序
// 从聚类首个点（离当日质心最近的点）出发，每次追加距上一点最近的
// 未访问点，距离相同取先出现者。O(n²)，聚类规模受单日工时约束
func SequenceVisits(cluster []*model.Visit) []*model.Visit {
	if len(cluster) <= 1 {
		return cluster
	}

	route := make([]*model.Visit, 0, len(cluster))
	route = append(route, cluster[0])

	remaining := make([]*model.Visit, len(cluster)-1)
	copy(remaining, cluster[1:])

	for len(remaining) > 0 {
		last := route[len(route)-1]

		minIdx := 0
		minDist := last.Location.Distance(remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := last.Location.Distance(remaining[i].Location); d < minDist {
				minDist = d
				minIdx = i
			}
		}

		route = append(route, remaining[minIdx])
		remaining = append(remaining[:minIdx], remaining[minIdx+1:]...)
	}

	return route
}

// BuildRoute 由排好序的拜访任务生成路线并计算时间指标
// 服务时长为各点时长之和，路途时长为相邻点对的估算之和
func BuildRoute(visits []*model.Visit, employeeID, routeNo int, speedKmh float64) *model.Route {
	var serviceTime float64
	for _, v := range visits {
		serviceTime += v.DurationMin
	}

	var travelTime float64
	for i := 0; i < len(visits)-1; i++ {
		dist := visits[i].Location.Distance(visits[i+1].Location)
		travelTime += model.TravelTimeMin(dist, speedKmh)
	}

	totalTime := serviceTime + travelTime

	return &model.Route{
		RouteID:        fmt.Sprintf("R%d_%d", employeeID, routeNo),
		EmployeeID:     model.EmployeeName(employeeID),
		Points:         visits,
		TotalPoints:    len(visits),
		ServiceTimeMin: serviceTime,
		TravelTimeMin:  travelTime,
		TotalTimeMin:   totalTime,
		TotalTimeHours: model.Round2(totalTime / 60),
	}
}
