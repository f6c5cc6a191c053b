// Package model 定义排线引擎的核心数据模型
package model

import "fmt"

// Point 拜访点位
// 从点位目录加载后不再修改，展开拜访任务时按值复制
type Point struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Address     string   `json:"address,omitempty" db:"address"`
	Location    Location `json:"location" db:"-"`
	DurationMin float64  `json:"duration_min" db:"duration_min"` // 单次拜访时长（分钟）
	Frequency   int      `json:"frequency" db:"frequency"`       // 周期内需拜访次数
}

// Normalize 补全缺失字段
// idx 为点位在目录中的位置，ID/名称缺失时用它兜底
func (p *Point) Normalize(idx int) {
	if p.ID == "" {
		p.ID = fmt.Sprintf("%d", idx)
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("点位_%d", idx)
	}
	if p.DurationMin < 0 {
		p.DurationMin = 0
	}
	if p.Frequency < 0 {
		p.Frequency = 0
	}
}

// NewVisit 由点位生成一次拜访任务（字段值复制，不共享引用）
func (p *Point) NewVisit() *Visit {
	return &Visit{
		PointID:     p.ID,
		PointName:   p.Name,
		Address:     p.Address,
		Location:    p.Location,
		DurationMin: p.DurationMin,
	}
}

// Visit 一次拜访任务
// 点位按需拜访频次展开后的单次实例
type Visit struct {
	PointID     string   `json:"point_id"`
	PointName   string   `json:"point_name"`
	Address     string   `json:"address,omitempty"`
	Location    Location `json:"location"`
	DurationMin float64  `json:"duration_min"`
}
