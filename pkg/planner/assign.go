// Package planner 实现拜访路线优化管线
package planner

import (
	"sort"

	"github.com/paixian/paixian/pkg/model"
)

// AssignRoutes 将路线按天整批分配给最少的业务员
// 按日历日升序，把一天的全部路线作为整体交给第一个
// 还有周天数余量且当天空闲的业务员（first-fit）；
// 没有合适人选时新建业务员。周天数上限在构造过程中即被保证
func AssignRoutes(routes []*model.Route, maxDaysPerWeek int) ([]*model.Route, []*model.Employee) {
	if len(routes) == 0 {
		return nil, nil
	}

	byDay := make(map[string][]*model.Route)
	for _, r := range routes {
		byDay[r.Date] = append(byDay[r.Date], r)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	var employees []*model.Employee

	for _, day := range days {
		assigned := false
		for _, emp := range employees {
			if emp.CanTakeDay(day, maxDaysPerWeek) {
				emp.TakeDay(byDay[day])
				assigned = true
				break
			}
		}

		if !assigned {
			emp := model.NewEmployee(len(employees) + 1)
			emp.TakeDay(byDay[day])
			employees = append(employees, emp)
		}
	}

	// 按业务员-路线顺序展平
	var final []*model.Route
	for _, emp := range employees {
		final = append(final, emp.Routes...)
	}

	return final, employees
}
