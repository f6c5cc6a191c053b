// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/paixian/paixian/internal/metrics"
	"github.com/paixian/paixian/internal/repository"
	"github.com/paixian/paixian/pkg/errors"
	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
	"github.com/paixian/paixian/pkg/validator"
)

// PlanHandler 排线处理器
type PlanHandler struct {
	planner *planner.Planner
	repo    *repository.PlanRepository // 可为空，纯内存模式不落库
	timeout time.Duration
}

// NewPlanHandler 创建排线处理器
func NewPlanHandler(p *planner.Planner, timeout time.Duration) *PlanHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PlanHandler{planner: p, timeout: timeout}
}

// WithRepository 挂接结果仓储
func (h *PlanHandler) WithRepository(repo *repository.PlanRepository) *PlanHandler {
	h.repo = repo
	return h
}

// PointInput 点位输入
type PointInput struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Address     string  `json:"address,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DurationMin float64 `json:"duration_min"`
	Frequency   int     `json:"frequency"`
}

// toModel 转换为领域点位并按序号兜底
func (in *PointInput) toModel(idx int) *model.Point {
	point := &model.Point{
		ID:      in.ID,
		Name:    in.Name,
		Address: in.Address,
		Location: model.Location{
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
		},
		DurationMin: in.DurationMin,
		Frequency:   in.Frequency,
	}
	point.Normalize(idx)
	return point
}

// GenerateRequest 排线生成请求
type GenerateRequest struct {
	Points     []PointInput     `json:"points"`
	Parameters ParametersInput  `json:"parameters"`
	Options    *GenerateOptions `json:"options,omitempty"`
}

// ParametersInput 规划参数输入，零值回落到服务端默认
type ParametersInput struct {
	MaxHoursPerDay float64 `json:"max_hours_per_day,omitempty"`
	MaxDaysPerWeek int     `json:"max_days_per_week,omitempty"`
	StartDate      string  `json:"start_date,omitempty"`
	HorizonDays    int     `json:"horizon_days,omitempty"`
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Timeout int  `json:"timeout_seconds,omitempty"`
	Persist bool `json:"persist,omitempty"` // 落库保存结果
}

// GenerateResponse 排线生成响应
type GenerateResponse struct {
	*model.PlanResult
	PlanID   string `json:"plan_id,omitempty"` // 落库后的结果ID
	Duration string `json:"duration"`
}

// Generate 生成排线方案
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := validateGenerateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	points := make([]*model.Point, len(req.Points))
	for i := range req.Points {
		points[i] = req.Points[i].toModel(i)
	}

	params := model.Parameters{
		MaxHoursPerDay: req.Parameters.MaxHoursPerDay,
		MaxDaysPerWeek: req.Parameters.MaxDaysPerWeek,
		StartDate:      req.Parameters.StartDate,
		HorizonDays:    req.Parameters.HorizonDays,
	}

	timeout := h.timeout
	if req.Options != nil && req.Options.Timeout > 0 {
		timeout = time.Duration(req.Options.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	start := time.Now()
	result := h.planner.Optimize(ctx, points, params)
	duration := time.Since(start)

	metrics.RecordPlanGeneration(result.Success, duration)
	if result.Success {
		metrics.SetPlanSize(result.Summary.TotalRoutes, result.Summary.TotalEmployees, result.Summary.TotalPoints)
	}

	resp := GenerateResponse{
		PlanResult: result,
		Duration:   duration.String(),
	}

	if h.repo != nil && req.Options != nil && req.Options.Persist {
		id, err := h.repo.Save(ctx, result)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存排线结果失败"))
			return
		}
		resp.PlanID = id.String()
	}

	respondJSON(w, http.StatusOK, resp)
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Parameters.StartDate != "" {
		if _, err := time.Parse(planner.DateLayout, req.Parameters.StartDate); err != nil {
			ve.Add("parameters.start_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}
	if req.Parameters.MaxHoursPerDay < 0 {
		ve.Add("parameters.max_hours_per_day", "日工时不能为负")
	}
	if req.Parameters.MaxDaysPerWeek < 0 {
		ve.Add("parameters.max_days_per_week", "周天数不能为负")
	}
	if req.Parameters.HorizonDays < 0 {
		ve.Add("parameters.horizon_days", "规划周期不能为负")
	}

	for _, p := range req.Points {
		if p.Latitude < -90 || p.Latitude > 90 {
			ve.Add("points", "纬度超出范围: "+p.Name)
			break
		}
		if p.Longitude < -180 || p.Longitude > 180 {
			ve.Add("points", "经度超出范围: "+p.Name)
			break
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ValidateRequest 排线验证请求
type ValidateRequest struct {
	Result *model.PlanResult `json:"result"`
	Points []PointInput      `json:"points,omitempty"` // 提供时额外校验拜访守恒
}

// ValidateResponse 验证响应
type ValidateResponse struct {
	IsValid bool              `json:"is_valid"`
	Issues  []validator.Issue `json:"issues"`
}

// Validate 验证排线结果
func (h *PlanHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Result == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "缺少排线结果"))
		return
	}

	v := validator.NewPlanValidator(nil)

	var issues []validator.Issue
	if len(req.Points) > 0 {
		points := make([]*model.Point, len(req.Points))
		for i := range req.Points {
			points[i] = req.Points[i].toModel(i)
		}
		issues = v.ValidateAgainstCatalog(req.Result, points)
	} else {
		issues = v.Validate(req.Result)
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		IsValid: !validator.HasErrors(issues),
		Issues:  issues,
	})
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
