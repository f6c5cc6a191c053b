// Package integration 提供API集成测试
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paixian/paixian/internal/handler"
	"github.com/paixian/paixian/pkg/model"
	"github.com/paixian/paixian/pkg/planner"
)

func newPlanHandler() *handler.PlanHandler {
	return handler.NewPlanHandler(planner.New(planner.DefaultConfig()), 30*time.Second)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	h(recorder, req)
	return recorder
}

func generatePayload() map[string]interface{} {
	return map[string]interface{}{
		"points": []map[string]interface{}{
			{"id": "P1", "name": "门店甲", "latitude": 31.2304, "longitude": 121.4737, "duration_min": 45, "frequency": 2},
			{"id": "P2", "name": "门店乙", "latitude": 31.2404, "longitude": 121.4837, "duration_min": 30, "frequency": 2},
			{"id": "P3", "name": "门店丙", "latitude": 31.2504, "longitude": 121.4937, "duration_min": 60, "frequency": 1},
		},
		"parameters": map[string]interface{}{
			"start_date":   "2026-03-02",
			"horizon_days": 14,
		},
	}
}

// TestPlanAPI_Generate 测试排线生成API
func TestPlanAPI_Generate(t *testing.T) {
	h := newPlanHandler()

	recorder := postJSON(t, h.Generate, "/api/v1/plan/generate", generatePayload())

	if recorder.Code != http.StatusOK {
		t.Fatalf("期望状态码200，实际: %d, body=%s", recorder.Code, recorder.Body.String())
	}

	var resp handler.GenerateResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if !resp.Success {
		t.Fatalf("排线应成功，错误: %s", resp.Error)
	}
	if resp.Summary == nil || resp.Summary.TotalPoints != 5 {
		t.Errorf("期望拜访总次数5，实际: %+v", resp.Summary)
	}
	if resp.Duration == "" {
		t.Error("响应应包含耗时")
	}
}

// TestPlanAPI_Generate_InvalidDate 测试无效日期返回400
func TestPlanAPI_Generate_InvalidDate(t *testing.T) {
	h := newPlanHandler()

	payload := generatePayload()
	payload["parameters"] = map[string]interface{}{"start_date": "2026/03/02"}

	recorder := postJSON(t, h.Generate, "/api/v1/plan/generate", payload)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("期望状态码400，实际: %d", recorder.Code)
	}
}

// TestPlanAPI_Generate_BadLatitude 测试坐标越界返回400
func TestPlanAPI_Generate_BadLatitude(t *testing.T) {
	h := newPlanHandler()

	payload := map[string]interface{}{
		"points": []map[string]interface{}{
			{"id": "P1", "latitude": 120.0, "longitude": 121.4737, "duration_min": 30, "frequency": 1},
		},
	}

	recorder := postJSON(t, h.Generate, "/api/v1/plan/generate", payload)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("期望状态码400，实际: %d", recorder.Code)
	}
}

// TestPlanAPI_Generate_MethodNotAllowed 测试GET被拒绝
func TestPlanAPI_Generate_MethodNotAllowed(t *testing.T) {
	h := newPlanHandler()

	req := httptest.NewRequest("GET", "/api/v1/plan/generate", nil)
	recorder := httptest.NewRecorder()
	h.Generate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("期望状态码400，实际: %d", recorder.Code)
	}
}

// TestPlanAPI_Validate 测试生成结果通过验证API
func TestPlanAPI_Validate(t *testing.T) {
	h := newPlanHandler()

	recorder := postJSON(t, h.Generate, "/api/v1/plan/generate", generatePayload())
	if recorder.Code != http.StatusOK {
		t.Fatalf("生成失败: %d", recorder.Code)
	}

	var genResp handler.GenerateResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &genResp); err != nil {
		t.Fatalf("解析生成响应失败: %v", err)
	}

	validateReq := map[string]interface{}{
		"result": genResp.PlanResult,
		"points": generatePayload()["points"],
	}

	recorder = postJSON(t, h.Validate, "/api/v1/plan/validate", validateReq)
	if recorder.Code != http.StatusOK {
		t.Fatalf("验证请求失败: %d", recorder.Code)
	}

	var valResp handler.ValidateResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &valResp); err != nil {
		t.Fatalf("解析验证响应失败: %v", err)
	}

	if !valResp.IsValid {
		t.Errorf("生成结果应通过验证，问题: %+v", valResp.Issues)
	}
}

// TestStatsAPI_Workload 测试负载分析API
func TestStatsAPI_Workload(t *testing.T) {
	routes := []*model.Route{
		{RouteID: "R1_1", EmployeeID: "业务员_1", Date: "2026-03-02", TotalPoints: 3, ServiceTimeMin: 120, TravelTimeMin: 30, TotalTimeMin: 150},
		{RouteID: "R2_1", EmployeeID: "业务员_2", Date: "2026-03-02", TotalPoints: 2, ServiceTimeMin: 90, TravelTimeMin: 20, TotalTimeMin: 110},
	}

	recorder := postJSON(t, handler.WorkloadHandler, "/api/v1/stats/workload",
		map[string]interface{}{"routes": routes})

	if recorder.Code != http.StatusOK {
		t.Fatalf("期望状态码200，实际: %d", recorder.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if _, ok := resp["workload_gini"]; !ok {
		t.Error("响应应包含workload_gini")
	}
	if _, ok := resp["balance_score"]; !ok {
		t.Error("响应应包含balance_score")
	}
}

// TestStatsAPI_Coverage 测试日历覆盖分析API
func TestStatsAPI_Coverage(t *testing.T) {
	routes := []*model.Route{
		{RouteID: "R1_1", EmployeeID: "业务员_1", Date: "2026-03-02", TotalPoints: 3, TotalTimeMin: 150},
	}

	recorder := postJSON(t, handler.CoverageHandler, "/api/v1/stats/coverage",
		map[string]interface{}{
			"routes":       routes,
			"start_date":   "2026-03-02",
			"horizon_days": 7,
		})

	if recorder.Code != http.StatusOK {
		t.Fatalf("期望状态码200，实际: %d", recorder.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	// 7天周期含5个工作日，仅1天有排线
	if got := resp["total_working_days"].(float64); got != 5 {
		t.Errorf("期望5个工作日，实际: %v", got)
	}
	if got := resp["planned_days"].(float64); got != 1 {
		t.Errorf("期望1个已排日，实际: %v", got)
	}
}
