// Package planner 实现拜访路线优化管线
package planner

import (
	"time"

	"github.com/paixian/paixian/pkg/errors"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// WorkingDays 返回从 startDate 起 horizonDays 个日历日内的工作日
// 只保留周一至周五，升序排列
func WorkingDays(startDate string, horizonDays int) ([]string, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil, errors.InvalidInput("start_date", "日期格式应为YYYY-MM-DD")
	}
	if horizonDays <= 0 {
		return nil, errors.InvalidInput("horizon_days", "规划周期必须为正数")
	}

	var days []string
	for i := 0; i < horizonDays; i++ {
		d := start.AddDate(0, 0, i)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d.Format(DateLayout))
		}
	}
	return days, nil
}

// DayOfWeek 返回日期对应的星期名称（英文，如 Monday）
func DayOfWeek(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return d.Weekday().String()
}
