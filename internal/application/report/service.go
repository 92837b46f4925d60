package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	costapp "tga-report-ai-api/internal/application/cost"
	"tga-report-ai-api/internal/config"
	"tga-report-ai-api/internal/workflow/chain"
	wfmodel "tga-report-ai-api/internal/workflow/model"
	"tga-report-ai-api/internal/workflow/node"
	apperrors "tga-report-ai-api/pkg/errors"
	"tga-report-ai-api/pkg/metrics"
)

// Service 报告生成编排器。
// 上下文构建一次，各章节并行生成，失败章节降级为占位，
// 最终按目录顺序组装成文档。
type Service struct {
	builder *ContextBuilder
	chain   *chain.SectionChain
	cost    *costapp.Engine
	cfg     config.ReportConfig
	logger  *slog.Logger
}

func NewService(builder *ContextBuilder, sectionChain *chain.SectionChain, costEngine *costapp.Engine, cfg config.ReportConfig, logger *slog.Logger) *Service {
	return &Service{
		builder: builder,
		chain:   sectionChain,
		cost:    costEngine,
		cfg:     cfg,
		logger:  logger,
	}
}

// Generate 生成完整报告文档。
// 上下文无效时立即返回，不触发任何 LLM 调用。
func (s *Service) Generate(ctx context.Context, in BuildInput) (*wfmodel.ReportDocument, error) {
	start := time.Now()

	pctx, err := s.builder.Build(ctx, in)
	if err != nil {
		return nil, err
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	specs := Catalog()
	results := make([]wfmodel.SectionResult, len(specs))
	vars := PromptVars(pctx)

	// 章节失败不取消兄弟章节，goroutine 恒返回 nil
	var g errgroup.Group
	g.SetLimit(s.concurrency())

	for i, spec := range specs {
		g.Go(func() error {
			results[i] = s.generateSection(ctx, spec, pctx, vars)
			metrics.SectionResultTotal.WithLabelValues(spec.ID, string(results[i].Content.Kind)).Inc()
			return nil
		})
	}
	_ = g.Wait()

	doc, err := Assemble(pctx, results, s.cfg.FailWhenAllSections)
	status := "success"
	if err != nil {
		status = "failed"
	}
	metrics.ReportGenerationTotal.WithLabelValues(string(pctx.ProjectType), status).Inc()
	metrics.ReportGenerationDuration.WithLabelValues(string(pctx.ProjectType)).Observe(time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "report generation finished",
		"project_name", pctx.ProjectName,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())
	return doc, err
}

func (s *Service) concurrency() int {
	if s.cfg.MaxConcurrentSections > 0 {
		return s.cfg.MaxConcurrentSections
	}
	return 4
}

// generateSection 生成单个章节，任何失败都收敛为失败占位结果
func (s *Service) generateSection(ctx context.Context, spec wfmodel.SectionSpec, pctx *wfmodel.ProjectContext, vars map[string]any) wfmodel.SectionResult {
	if spec.Shape == wfmodel.ShapeCostBreakdown {
		return s.generateCostSection(ctx, spec, pctx, vars)
	}

	result := wfmodel.SectionResult{
		SectionID: spec.ID,
		Title:     spec.Title,
		Order:     spec.Order,
		State:     wfmodel.StateRequested,
	}

	out, err := s.chain.Invoke(ctx, &wfmodel.SectionGenerateInput{
		SectionID: spec.ID,
		PromptID:  spec.PromptID,
		Vars:      vars,
		MaxTokens: spec.MaxTokens,
		Timeout:   s.cfg.SectionTimeout,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "section generation failed",
			"section_id", spec.ID, "error", err)
		result.State = wfmodel.StateFinalized
		result.Content = wfmodel.FailedContent(err.Error())
		return result
	}
	result.RawReply = out.RawReply
	result.State = wfmodel.StateRepliedOK

	result.Content = node.Parse(out.RawReply, spec.Shape)
	if result.Content.Kind == wfmodel.ContentFailed && !spec.ShapeRequired {
		// 形态非强制时保留原文作为自由文本
		result.Content = wfmodel.FreeformContent(out.RawReply)
	}
	result.State = wfmodel.StateParsed

	// A.1 末尾附上静态规范清单，不经过 LLM
	if spec.ID == "a1_allgemeines" && result.Content.Kind == wfmodel.ContentFreeform {
		result.Content = wfmodel.FreeformContent(
			result.Content.Text + "\n\n" + BuildStandardsText(pctx.ProjectType, pctx.FederalState))
	}
	result.State = wfmodel.StateFinalized
	return result
}

// generateCostSection 成本章节走估算引擎；
// 无面积数据时退回静态概算说明，不调用 LLM
func (s *Service) generateCostSection(ctx context.Context, spec wfmodel.SectionSpec, pctx *wfmodel.ProjectContext, vars map[string]any) wfmodel.SectionResult {
	area := 0.0
	roomCount := 0
	if pctx.RoomSummary != nil {
		area = pctx.RoomSummary.TotalAreaM2
		roomCount = pctx.RoomSummary.TotalRooms
	}

	if area <= 0 {
		return wfmodel.SectionResult{
			SectionID: spec.ID,
			Title:     spec.Title,
			Order:     spec.Order,
			State:     wfmodel.StateFinalized,
			Content:   wfmodel.FreeformContent(costSummaryWithoutData),
		}
	}

	result, err := s.cost.Estimate(ctx, costapp.EstimateInput{
		ProjectType: pctx.ProjectType,
		PromptVars:  vars,
		TotalAreaM2: area,
		RoomCount:   roomCount,
		Timeout:     s.cfg.SectionTimeout,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "cost section failed",
			"section_id", spec.ID, "error", err)
	}
	return *result
}

// costSummaryWithoutData 无房间簿时的静态成本概算说明
const costSummaryWithoutData = `Die Kostenschätzung erfolgt auf Grundlage von:
- BKI Baukosteninformation (aktuelle Indices)
- Erfahrungswerten aus vergleichbaren Projekten
- Herstellerangaben für Großkomponenten
- Pauschalansätzen für Kleinteile

**Kostenschätzung nach DIN 276** (vorläufig, Genauigkeit ±30%):

- KG 410 Sanitär: [zu ermitteln] €
- KG 420 Wärmeversorgung: [zu ermitteln] €
- KG 430 Lüftung: [zu ermitteln] €
- KG 434 Kälte: [zu ermitteln] €
- KG 440 Elektro: [zu ermitteln] €
- KG 470 Nutzungsspez.: [zu ermitteln] €
- KG 480 Gebäudeautomation: [zu ermitteln] €

**Summe TGA (KG 400)**: [zu ermitteln] € (netto)

Die detaillierte Kostenschätzung wird in der nächsten Bearbeitungsphase erstellt.`

// EstimateCosts 独立的成本估算入口（JSON 端点）。
// 与报告生成共用上下文构建器和估算引擎。
func (s *Service) EstimateCosts(ctx context.Context, in BuildInput, totalAreaM2 float64, roomCount int, heightM float64) (*wfmodel.CostBreakdown, *wfmodel.ProjectContext, error) {
	pctx, err := s.builder.Build(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if totalAreaM2 <= 0 && pctx.RoomSummary != nil {
		totalAreaM2 = pctx.RoomSummary.TotalAreaM2
	}

	result, err := s.cost.Estimate(ctx, costapp.EstimateInput{
		ProjectType: pctx.ProjectType,
		PromptVars:  PromptVars(pctx),
		TotalAreaM2: totalAreaM2,
		RoomCount:   roomCount,
		HeightM:     heightM,
		Timeout:     s.cfg.SectionTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	breakdown, ok := result.Content.Structured.(*wfmodel.CostBreakdown)
	if !ok {
		return nil, nil, apperrors.ErrCostEstimateFailed.WithDetail("unexpected cost payload")
	}
	return breakdown, pctx, nil
}
