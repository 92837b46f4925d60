package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tga-report-ai-api/internal/application/report"
	"tga-report-ai-api/internal/interfaces/http/dto"
)

// costDisclaimer 独立成本端点的固定免责声明
const costDisclaimer = "Diese Kostenschätzung wurde automatisiert auf Basis von Kennwerten erstellt und ersetzt keine detaillierte Fachplanung."

// CostHandler 成本估算处理器
type CostHandler struct {
	service *report.Service
}

// NewCostHandler 创建成本估算处理器
func NewCostHandler(service *report.Service) *CostHandler {
	return &CostHandler{service: service}
}

// Estimate 成本估算接口
// @Summary DIN 276 KG 400 成本估算
// @Description 根据项目参数生成结构化成本分解
// @Tags Costs
// @Accept json
// @Produce json
// @Param body body dto.CostEstimateRequest true "项目参数"
// @Success 200 {object} dto.CostEstimateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/costs/estimate [post]
func (h *CostHandler) Estimate(c *gin.Context) {
	var req dto.CostEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	breakdown, pctx, err := h.service.EstimateCosts(c.Request.Context(), report.BuildInput{
		ProjectName:  req.ProjectName,
		Location:     req.Location,
		ProjectType:  req.ProjectType,
		FederalState: req.FederalState,
	}, req.TotalAreaM2, req.RoomCount, req.HeightM)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CostEstimateResponse{
		Success:        true,
		ProjectName:    pctx.ProjectName,
		TotalAreaM2:    req.TotalAreaM2,
		CostEstimation: breakdown,
		GeneratedBy:    "TGA AI Planning Assistant",
		Disclaimer:     costDisclaimer,
	})
}
