// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/paixian/paixian/internal/metrics"
	"github.com/paixian/paixian/pkg/errors"
	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
	"github.com/paixian/paixian/pkg/stats"
)

// WorkloadRequest 负载分析请求
type WorkloadRequest struct {
	Routes []*model.Route `json:"routes"`
}

// WorkloadHandler 负载分析
func WorkloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req WorkloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	result := stats.NewWorkloadAnalyzer().Analyze(req.Routes)
	metrics.SetBalanceScore(result.BalanceScore)

	respondJSON(w, http.StatusOK, result)
}

// CoverageRequest 日历覆盖分析请求
// 给出起始日期和周期时按工作日历计算空档日，否则只统计路线分布
type CoverageRequest struct {
	Routes      []*model.Route `json:"routes"`
	StartDate   string         `json:"start_date,omitempty"`
	HorizonDays int            `json:"horizon_days,omitempty"`
}

// CoverageHandler 日历覆盖分析
func CoverageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CoverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	var workingDays []string
	if req.StartDate != "" && req.HorizonDays > 0 {
		days, err := planner.WorkingDays(req.StartDate, req.HorizonDays)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的日期范围"))
			return
		}
		workingDays = days
	} else {
		// 未给出周期时以结果中出现的日期为工作日历
		seen := make(map[string]bool)
		for _, route := range req.Routes {
			if !seen[route.Date] {
				seen[route.Date] = true
				workingDays = append(workingDays, route.Date)
			}
		}
	}

	result := stats.NewCoverageAnalyzer().Analyze(req.Routes, workingDays)
	metrics.SetCoverageRate(result.OverallCoverage)

	respondJSON(w, http.StatusOK, result)
}
