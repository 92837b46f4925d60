package dto

import (
	wfmodel "tga-report-ai-api/internal/workflow/model"
)

// CostEstimateRequest 独立成本估算请求
type CostEstimateRequest struct {
	ProjectName  string  `json:"project_name"`
	Location     string  `json:"location"`
	ProjectType  string  `json:"project_type"`
	FederalState string  `json:"federal_state"`
	TotalAreaM2  float64 `json:"total_area_m2"`
	RoomCount    int     `json:"number_of_rooms,omitempty"`
	HeightM      float64 `json:"building_height_m,omitempty"`
}

// CostEstimateResponse 成本估算响应。
// 对外契约字段固定，cost_estimation 内部使用德语键名
type CostEstimateResponse struct {
	Success        bool                   `json:"success"`
	ProjectName    string                 `json:"project_name"`
	TotalAreaM2    float64                `json:"total_area_m2"`
	CostEstimation *wfmodel.CostBreakdown `json:"cost_estimation"`
	GeneratedBy    string                 `json:"generated_by"`
	Disclaimer     string                 `json:"disclaimer"`
}
