// Package router 提供 HTTP 路由配置
package router

import (
	"tga-report-ai-api/internal/config"
	"tga-report-ai-api/internal/infrastructure/persistence/redis"
	"tga-report-ai-api/internal/interfaces/http/handler"
	"tga-report-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health *handler.HealthHandler
	Report *handler.ReportHandler
	Cost   *handler.CostHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	redis    *redis.Client
}

// New 创建新的路由器
// redisClient 可以为 nil，此时限流中间件退化为直通
func New(cfg *config.Config, handlers Handlers, redisClient *redis.Client) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		redis:    redisClient,
	}

	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组，按客户端 IP 限流
	v1 := r.engine.Group("/v1")
	v1.Use(r.rateLimit())
	{
		reports := v1.Group("/reports")
		{
			reports.POST("/generate", r.handlers.Report.Generate)
		}

		costs := v1.Group("/costs")
		{
			costs.POST("/estimate", r.handlers.Cost.Estimate)
		}
	}
}

func (r *Router) rateLimit() gin.HandlerFunc {
	cfg := middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}
	if !cfg.Enabled || r.redis == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(cfg, redis.NewRateLimiter(r.redis))
}
