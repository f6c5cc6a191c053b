// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/paixian/paixian/internal/repository"
	"github.com/paixian/paixian/pkg/errors"
	"github.com/paixian/paixian/pkg/model"
)

// PointHandler 点位目录处理器，仅在启用数据库时注册
type PointHandler struct {
	repo *repository.PointRepository
}

// NewPointHandler 创建点位目录处理器
func NewPointHandler(repo *repository.PointRepository) *PointHandler {
	return &PointHandler{repo: repo}
}

// ImportRequest 点位导入请求
type ImportRequest struct {
	Points []PointInput `json:"points"`
}

// ImportResponse 点位导入响应
type ImportResponse struct {
	Imported int `json:"imported"`
}

// Import 批量导入点位目录
func (h *PointHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Points) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "点位列表不能为空"))
		return
	}

	points := make([]*model.Point, len(req.Points))
	for i := range req.Points {
		points[i] = req.Points[i].toModel(i)
	}

	if err := h.repo.BulkUpsert(r.Context(), points); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "导入点位失败"))
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{Imported: len(points)})
}

// ListResponse 点位列表响应
type ListResponse struct {
	Points []*model.Point `json:"points"`
	Total  int            `json:"total"`
}

// List 分页查询点位目录
func (h *PointHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	filter := repository.DefaultListFilter()
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset >= 0 {
		filter = filter.WithOffset(offset)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter = filter.WithSearch(search)
	}

	points, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询点位失败"))
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{Points: points, Total: total})
}
