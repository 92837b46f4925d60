package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tga-report-ai-api/internal/config"
	"tga-report-ai-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cfg   *config.Config
	redis *redis.Client
}

// NewHealthHandler 创建健康检查处理器
// redisClient 可以为 nil（限流关闭时不接 Redis）
func NewHealthHandler(cfg *config.Config, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{cfg: cfg, redis: redisClient}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Ready 就绪检查接口
// @Summary 就绪检查
// @Description LLM 配置必需，Redis 可选（仅限流用）
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"llm":   {Status: "unknown"},
		"redis": {Status: "disabled"},
	}
	ready := true

	// LLM 配置（必需）：至少一个 provider
	if h == nil || h.cfg == nil || len(h.cfg.LLM.Providers) == 0 {
		checks["llm"].Status = "missing"
		checks["llm"].Error = "no llm providers configured"
		ready = false
	} else if _, ok := h.cfg.LLM.Providers[h.cfg.LLM.DefaultProvider]; !ok {
		checks["llm"].Status = "error"
		checks["llm"].Error = "default provider not found in providers"
		ready = false
	} else {
		checks["llm"].Status = "ok"
	}

	// Redis（可选，仅限流使用，不影响就绪态）
	if h != nil && h.redis != nil {
		checks["redis"] = &readinessCheck{Status: "unknown"}
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "degraded"
			checks["redis"].Error = err.Error()
		} else {
			checks["redis"].Status = "ok"
		}
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
