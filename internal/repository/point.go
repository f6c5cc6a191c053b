// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paixian/paixian/pkg/model"
)

// PointRepository 点位目录仓储
type PointRepository struct {
	db DB
}

// NewPointRepository 创建点位仓储
func NewPointRepository(db DB) *PointRepository {
	return &PointRepository{db: db}
}

// Upsert 写入或更新单个点位，以业务编码为主键
func (r *PointRepository) Upsert(ctx context.Context, point *model.Point) error {
	query := `
		INSERT INTO points (code, name, address, latitude, longitude, duration_min, frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			duration_min = EXCLUDED.duration_min,
			frequency = EXCLUDED.frequency,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		point.ID, point.Name, point.Address,
		point.Location.Latitude, point.Location.Longitude,
		point.DurationMin, point.Frequency, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("写入点位失败: %w", err)
	}

	return nil
}

// BulkUpsert 批量写入点位
func (r *PointRepository) BulkUpsert(ctx context.Context, points []*model.Point) error {
	for _, p := range points {
		if err := r.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// GetByCode 根据业务编码获取点位
func (r *PointRepository) GetByCode(ctx context.Context, code string) (*model.Point, error) {
	query := `
		SELECT code, name, address, latitude, longitude, duration_min, frequency
		FROM points
		WHERE code = $1
	`

	point := &model.Point{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&point.ID, &point.Name, &point.Address,
		&point.Location.Latitude, &point.Location.Longitude,
		&point.DurationMin, &point.Frequency,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询点位失败: %w", err)
	}

	return point, nil
}

// List 分页查询点位目录
func (r *PointRepository) List(ctx context.Context, filter ListFilter) ([]*model.Point, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Search != "" {
		where = "WHERE name ILIKE $1 OR code ILIKE $1"
		args = append(args, "%"+filter.Search+"%")
	}

	countQuery := "SELECT COUNT(*) FROM points " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计点位失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT code, name, address, latitude, longitude, duration_min, frequency
		FROM points %s
		ORDER BY code
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询点位失败: %w", err)
	}
	defer rows.Close()

	var points []*model.Point
	for rows.Next() {
		point := &model.Point{}
		if err := rows.Scan(
			&point.ID, &point.Name, &point.Address,
			&point.Location.Latitude, &point.Location.Longitude,
			&point.DurationMin, &point.Frequency,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描点位失败: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("遍历点位失败: %w", err)
	}

	return points, total, nil
}

// Delete 删除点位
func (r *PointRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM points WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("删除点位失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("点位不存在")
	}

	return nil
}
