// Package model 定义排线引擎的核心数据模型
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// DateRange 日期范围
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Location 地理位置
type Location struct {
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EarthRadiusKm 地球半径（公里）
const EarthRadiusKm = 6371.0

// Distance 计算两个位置之间的大圆距离（公里）
// 使用 Haversine 公式
func (l Location) Distance(other Location) float64 {
	lat1Rad := l.Latitude * math.Pi / 180
	lat2Rad := other.Latitude * math.Pi / 180
	deltaLat := (other.Latitude - l.Latitude) * math.Pi / 180
	deltaLon := (other.Longitude - l.Longitude) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// TravelTimeMin 按平均时速估算路途时间（分钟）
// speedKmh 必须为正数，由调用方保证
func TravelTimeMin(distanceKm, speedKmh float64) float64 {
	return distanceKm / speedKmh * 60
}

// Round1 保留1位小数
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 保留2位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
