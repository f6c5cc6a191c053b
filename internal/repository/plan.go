// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paixian/paixian/pkg/model"
)

// PlanRepository 排线结果仓储
type PlanRepository struct {
	db DB
}

// NewPlanRepository 创建排线结果仓储
func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// PlanHeader 排线结果头信息
type PlanHeader struct {
	ID        uuid.UUID `json:"id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Routes    int       `json:"routes"`
	CreatedAt time.Time `json:"created_at"`
}

// Save 保存一次排线结果，返回生成的ID
func (r *PlanRepository) Save(ctx context.Context, result *model.PlanResult) (uuid.UUID, error) {
	id := uuid.New()

	params, err := json.Marshal(result.Parameters)
	if err != nil {
		return uuid.Nil, fmt.Errorf("序列化规划参数失败: %w", err)
	}

	var summary, employees []byte
	if result.Summary != nil {
		if summary, err = json.Marshal(result.Summary); err != nil {
			return uuid.Nil, fmt.Errorf("序列化汇总失败: %w", err)
		}
	}
	if result.Employees != nil {
		if employees, err = json.Marshal(result.Employees); err != nil {
			return uuid.Nil, fmt.Errorf("序列化业务员汇总失败: %w", err)
		}
	}

	query := `
		INSERT INTO plans (id, success, error, parameters, summary, employees, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		id, result.Success, result.Error, params,
		nullableJSON(summary), nullableJSON(employees), time.Now(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("保存排线结果失败: %w", err)
	}

	for _, route := range result.Routes {
		points, err := json.Marshal(route.Points)
		if err != nil {
			return uuid.Nil, fmt.Errorf("序列化路线点位失败: %w", err)
		}

		routeQuery := `
			INSERT INTO plan_routes (
				id, plan_id, route_id, employee_id, date, day_of_week,
				points, total_points, service_time_min, travel_time_min, total_time_min
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err = r.db.ExecContext(ctx, routeQuery,
			uuid.New(), id, route.RouteID, route.EmployeeID, route.Date, route.DayOfWeek,
			points, route.TotalPoints, route.ServiceTimeMin, route.TravelTimeMin, route.TotalTimeMin,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("保存路线失败: %w", err)
		}
	}

	return id, nil
}

// GetByID 根据ID还原排线结果
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PlanResult, error) {
	query := `
		SELECT success, error, parameters, summary, employees
		FROM plans
		WHERE id = $1
	`

	result := &model.PlanResult{}
	var params []byte
	var summary, employees sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&result.Success, &result.Error, &params, &summary, &employees,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询排线结果失败: %w", err)
	}

	result.Parameters = &model.Parameters{}
	if err := json.Unmarshal(params, result.Parameters); err != nil {
		return nil, fmt.Errorf("解析规划参数失败: %w", err)
	}
	if summary.Valid {
		result.Summary = &model.Summary{}
		if err := json.Unmarshal([]byte(summary.String), result.Summary); err != nil {
			return nil, fmt.Errorf("解析汇总失败: %w", err)
		}
	}
	if employees.Valid {
		if err := json.Unmarshal([]byte(employees.String), &result.Employees); err != nil {
			return nil, fmt.Errorf("解析业务员汇总失败: %w", err)
		}
	}

	routes, err := r.loadRoutes(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Routes = routes

	return result, nil
}

// loadRoutes 加载排线结果的全部路线
func (r *PlanRepository) loadRoutes(ctx context.Context, planID uuid.UUID) ([]*model.Route, error) {
	query := `
		SELECT route_id, employee_id, date, day_of_week,
			points, total_points, service_time_min, travel_time_min, total_time_min
		FROM plan_routes
		WHERE plan_id = $1
		ORDER BY employee_id, date, route_id
	`

	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("查询路线失败: %w", err)
	}
	defer rows.Close()

	var routes []*model.Route
	for rows.Next() {
		route := &model.Route{}
		var points []byte
		if err := rows.Scan(
			&route.RouteID, &route.EmployeeID, &route.Date, &route.DayOfWeek,
			&points, &route.TotalPoints, &route.ServiceTimeMin, &route.TravelTimeMin, &route.TotalTimeMin,
		); err != nil {
			return nil, fmt.Errorf("扫描路线失败: %w", err)
		}
		if err := json.Unmarshal(points, &route.Points); err != nil {
			return nil, fmt.Errorf("解析路线点位失败: %w", err)
		}
		route.TotalTimeHours = model.Round2(route.TotalTimeMin / 60)
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历路线失败: %w", err)
	}

	return routes, nil
}

// List 分页查询历史排线
func (r *PlanRepository) List(ctx context.Context, filter ListFilter) ([]*PlanHeader, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计排线失败: %w", err)
	}

	query := `
		SELECT p.id, p.success, p.error, p.created_at,
			(SELECT COUNT(*) FROM plan_routes r WHERE r.plan_id = p.id)
		FROM plans p
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("查询排线失败: %w", err)
	}
	defer rows.Close()

	var headers []*PlanHeader
	for rows.Next() {
		h := &PlanHeader{}
		if err := rows.Scan(&h.ID, &h.Success, &h.Error, &h.CreatedAt, &h.Routes); err != nil {
			return nil, 0, fmt.Errorf("扫描排线失败: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("遍历排线失败: %w", err)
	}

	return headers, total, nil
}

// Delete 删除排线结果，路线随外键级联删除
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除排线失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("排线不存在")
	}

	return nil
}

// nullableJSON 空切片落库为NULL
func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return data
}
