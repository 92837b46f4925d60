// Package wire 负责应用的依赖装配
package wire

import (
	"context"

	"github.com/gin-gonic/gin"

	costapp "tga-report-ai-api/internal/application/cost"
	"tga-report-ai-api/internal/application/report"
	"tga-report-ai-api/internal/config"
	"tga-report-ai-api/internal/infrastructure/llm"
	"tga-report-ai-api/internal/infrastructure/mlserve"
	"tga-report-ai-api/internal/infrastructure/persistence/redis"
	"tga-report-ai-api/internal/interfaces/http/handler"
	"tga-report-ai-api/internal/interfaces/http/router"
	workflowchain "tga-report-ai-api/internal/workflow/chain"
	workflowprompt "tga-report-ai-api/internal/workflow/prompt"
	"tga-report-ai-api/pkg/logger"
)

// App 装配完成的应用
type App struct {
	router *router.Router
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}

// InitializeApp 手工装配依赖，返回应用和清理函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	log := logger.Default()

	// Redis 仅服务于限流，关闭限流时不建立连接
	var redisClient *redis.Client
	cleanup := func() {}
	if cfg.Security.RateLimit.Enabled {
		client, err := redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			return nil, nil, err
		}
		redisClient = client
		cleanup = func() {
			_ = client.Close()
		}
	}

	// LLM 工厂与章节链
	factory := llm.NewEinoFactory(cfg)
	registry := workflowprompt.NewRegistry()
	sectionChain := workflowchain.NewSectionChain(factory, registry, cfg.LLM.Retry)

	// 应用服务
	mlClient := mlserve.NewClient(cfg.MLServe)
	builder := report.NewContextBuilder(mlClient, cfg.MLServe.MaxClassifyRows, log)
	costEngine := costapp.NewEngine(sectionChain, cfg.Cost, log)
	reportService := report.NewService(builder, sectionChain, costEngine, cfg.Report, log)

	// HTTP 层
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(cfg, redisClient),
		Report: handler.NewReportHandler(reportService, cfg.Server.HTTP.MaxUploadBytes, log),
		Cost:   handler.NewCostHandler(reportService),
	}
	r := router.New(cfg, handlers, redisClient)

	return &App{router: r}, cleanup, nil
}
