package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"tga-report-ai-api/internal/config"
	obseino "tga-report-ai-api/internal/observability/eino"
	wfmodel "tga-report-ai-api/internal/workflow/model"
	"tga-report-ai-api/internal/workflow/node"
	workflowport "tga-report-ai-api/internal/workflow/port"
	workflowprompt "tga-report-ai-api/internal/workflow/prompt"
	apperrors "tga-report-ai-api/pkg/errors"
	"tga-report-ai-api/pkg/metrics"
)

// SectionChain 负责单个章节的 LLM 调用：
// 模板渲染、单次调用截止时间、对可重试失败（超时/限流）的指数退避重试。
type SectionChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
	retry    config.RetryConfig
}

func NewSectionChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry, retry config.RetryConfig) *SectionChain {
	return &SectionChain{factory: factory, registry: registry, retry: retry}
}

func (c *SectionChain) Invoke(ctx context.Context, in *wfmodel.SectionGenerateInput) (*wfmodel.SectionGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.SectionID) == "" {
		return nil, fmt.Errorf("section id is required")
	}
	if strings.TrimSpace(in.PromptID) == "" {
		return nil, fmt.Errorf("prompt id is required")
	}

	ctx = obseino.WithSectionProvider(ctx, in.SectionID, in.Provider)
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGatewayUnreachable, "llm provider unavailable")
	}

	msgs, err := c.formatMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	opts := buildModelOptions(in)

	maxAttempts := c.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := c.retry.Backoff.Initial
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	var lastKind node.GatewayErrorKind
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outMsg, callErr := c.generateOnce(ctx, chatModel, msgs, opts, in.Timeout)
		if callErr == nil {
			return buildOutput(in, outMsg), nil
		}

		lastKind = node.ClassifyGatewayError(callErr)
		lastErr = callErr

		// 请求级截止时间已到则不再重试
		if ctx.Err() != nil {
			break
		}
		if !lastKind.Retryable() || attempt == maxAttempts {
			break
		}

		metrics.LLMRetryTotal.WithLabelValues(in.SectionID, string(lastKind)).Inc()
		select {
		case <-ctx.Done():
			return nil, apperrors.ErrGatewayTimeout.WithDetail("request deadline exceeded").WithError(ctx.Err())
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.retry.Backoff)
	}

	return nil, gatewayError(lastKind, lastErr)
}

// generateOnce 执行单次调用，带可选的单次截止时间
func (c *SectionChain) generateOnce(ctx context.Context, chatModel model.BaseChatModel, msgs []*schema.Message, opts []model.Option, timeout time.Duration) (*schema.Message, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	outMsg, err := chatModel.Generate(callCtx, msgs, opts...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func (c *SectionChain) formatMessages(ctx context.Context, in *wfmodel.SectionGenerateInput) ([]*schema.Message, error) {
	tpl, err := c.registry.ChatTemplate(workflowprompt.PromptID(in.PromptID))
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, in.Vars)
}

func buildModelOptions(in *wfmodel.SectionGenerateInput) []model.Option {
	opts := make([]model.Option, 0, 2)
	if in.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}

func buildOutput(in *wfmodel.SectionGenerateInput, outMsg *schema.Message) *wfmodel.SectionGenerateOutput {
	out := &wfmodel.SectionGenerateOutput{
		RawReply: outMsg.Content,
		Meta: wfmodel.LLMUsageMeta{
			Provider:    in.Provider,
			Model:       in.Model,
			GeneratedAt: time.Now(),
		},
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.Meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.Meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return out
}

func nextBackoff(current time.Duration, cfg config.BackoffConfig) time.Duration {
	multiplier := cfg.Multiplier
	if multiplier <= 1 {
		multiplier = 2
	}
	next := time.Duration(float64(current) * multiplier)
	if cfg.Max > 0 && next > cfg.Max {
		next = cfg.Max
	}
	return next
}

func gatewayError(kind node.GatewayErrorKind, err error) error {
	if err == nil {
		err = fmt.Errorf("llm call failed")
	}
	switch kind {
	case node.GatewayTimeout:
		return apperrors.ErrGatewayTimeout.WithError(err)
	case node.GatewayRateLimited:
		return apperrors.ErrGatewayRateLimited.WithError(err)
	case node.GatewayAuthFailure:
		return apperrors.ErrGatewayAuth.WithError(err)
	default:
		return apperrors.ErrGatewayUnreachable.WithError(err)
	}
}
