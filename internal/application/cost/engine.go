package cost

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"tga-report-ai-api/internal/config"
	"tga-report-ai-api/internal/workflow/chain"
	wfmodel "tga-report-ai-api/internal/workflow/model"
	"tga-report-ai-api/internal/workflow/node"
	workflowprompt "tga-report-ai-api/internal/workflow/prompt"
	apperrors "tga-report-ai-api/pkg/errors"
)

// AccuracyNote DIN 276 成本估算的固定精度说明
const AccuracyNote = "Kostenschätzung nach DIN 276, Genauigkeit ±30%"

// Engine DIN 276 KG 400 成本估算引擎。
// 构建带经验区间的提示词，严格校验结构化回复，
// 并对汇总金额做交叉检查；偏差超容差只追加备注，不修正数值。
type Engine struct {
	chain  *chain.SectionChain
	cfg    config.CostConfig
	logger *slog.Logger
}

func NewEngine(sectionChain *chain.SectionChain, cfg config.CostConfig, logger *slog.Logger) *Engine {
	return &Engine{chain: sectionChain, cfg: cfg, logger: logger}
}

// EstimateInput 成本估算输入
type EstimateInput struct {
	ProjectType wfmodel.ProjectType
	// PromptVars 由上下文构建器给出的共用模板变量
	PromptVars map[string]any

	TotalAreaM2 float64
	// RoomCount / HeightM 可选补充信息，0 表示未知
	RoomCount int
	HeightM   float64

	Provider string
	Timeout  time.Duration
}

// Estimate 执行成本估算。
// 始终返回章节结果；失败时结果为失败占位，error 供独立端点上报。
func (e *Engine) Estimate(ctx context.Context, in EstimateInput) (*wfmodel.SectionResult, error) {
	result := &wfmodel.SectionResult{
		SectionID: "b_kosten",
		Title:     "B. Kostenschätzung",
		Order:     10,
		State:     wfmodel.StateRequested,
	}

	if in.TotalAreaM2 <= 0 {
		result.State = wfmodel.StateFinalized
		result.Content = wfmodel.FailedContent("total_area_m2 must be positive")
		return result, apperrors.ErrContextInvalid.WithDetail("total_area_m2 must be positive")
	}

	out, err := e.chain.Invoke(ctx, &wfmodel.SectionGenerateInput{
		SectionID: result.SectionID,
		PromptID:  string(workflowprompt.PromptCostBreakdownV1),
		Vars:      e.promptVars(in),
		Provider:  in.Provider,
		MaxTokens: 2000,
		Timeout:   in.Timeout,
	})
	if err != nil {
		result.State = wfmodel.StateFinalized
		result.Content = wfmodel.FailedContent(err.Error())
		return result, apperrors.Wrap(err, apperrors.CodeCostEstimateFailed, "cost estimation failed")
	}
	result.RawReply = out.RawReply
	result.State = wfmodel.StateRepliedOK

	breakdown, err := node.ParseCostBreakdown(out.RawReply)
	if err != nil {
		result.State = wfmodel.StateFinalized
		result.Content = wfmodel.FailedContent(err.Error())
		return result, apperrors.Wrap(err, apperrors.CodeParseFailed, "cost reply validation failed")
	}
	result.State = wfmodel.StateParsed

	e.crossCheck(ctx, breakdown, in)

	result.Content = wfmodel.StructuredContent(wfmodel.CostSchemaID, breakdown)
	result.State = wfmodel.StateFinalized
	return result, nil
}

func (e *Engine) promptVars(in EstimateInput) map[string]any {
	vars := make(map[string]any, len(in.PromptVars)+3)
	for k, v := range in.PromptVars {
		vars[k] = v
	}
	vars["total_area_m2"] = fmt.Sprintf("%.0f", in.TotalAreaM2)
	vars["benchmark_table"] = RenderBenchmarkTable(in.ProjectType)
	vars["extra_lines"] = extraLines(in)
	return vars
}

func extraLines(in EstimateInput) string {
	lines := ""
	if in.RoomCount > 0 {
		lines += fmt.Sprintf("- Anzahl Räume: %d\n", in.RoomCount)
	}
	if in.HeightM > 0 {
		lines += fmt.Sprintf("- Mittlere Raumhöhe: %.1f m\n", in.HeightM)
	}
	if lines == "" {
		return "- Weitere Gebäudedaten: keine"
	}
	return lines[:len(lines)-1]
}

// crossCheck 重新计算汇总并与模型报告的总额比较，
// 同时检查每组单位面积金额是否落在经验区间内
func (e *Engine) crossCheck(ctx context.Context, breakdown *wfmodel.CostBreakdown, in EstimateInput) {
	breakdown.AccuracyNote = AccuracyNote

	tolerance := e.cfg.TotalTolerance
	if tolerance <= 0 {
		tolerance = 1.0
	}

	sum := breakdown.SumGroups()
	if diff := math.Abs(sum - breakdown.Total.Amount); diff > tolerance {
		e.logger.WarnContext(ctx, "cost total mismatch",
			"reported", breakdown.Total.Amount, "computed", sum)
		breakdown.Remarks = append(breakdown.Remarks, fmt.Sprintf(
			"Hinweis: Die Summe der Kostengruppen (%.2f €) weicht vom angegebenen Gesamtbetrag (%.2f €) ab.",
			sum, breakdown.Total.Amount))
	}

	ranges := BenchmarksFor(in.ProjectType)
	for _, code := range wfmodel.CostGroupCodes {
		group := breakdown.GroupByCode(code)
		r, ok := ranges[code]
		if group == nil || !ok {
			continue
		}
		if group.AmountPerArea > 0 && (group.AmountPerArea < r.Min || group.AmountPerArea > r.Max) {
			breakdown.Remarks = append(breakdown.Remarks, fmt.Sprintf(
				"Hinweis: %s liegt mit %.0f €/m² außerhalb des Kennwertbereichs %.0f - %.0f €/m².",
				wfmodel.CostGroupTitles[code], group.AmountPerArea, r.Min, r.Max))
		}
	}
}
