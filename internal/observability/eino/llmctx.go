package eino

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeySection  llmCtxKey = "llm_section"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// WithSection 在 Context 中标记当前生成的报告章节
func WithSection(ctx context.Context, sectionID string) context.Context {
	if ctx == nil {
		return nil
	}
	s := strings.TrimSpace(sectionID)
	if s == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeySection, s)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	p := strings.TrimSpace(provider)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

func WithSectionProvider(ctx context.Context, sectionID, provider string) context.Context {
	return WithProvider(WithSection(ctx, sectionID), provider)
}

func SectionFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(llmCtxKeySection).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}

func ProviderFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(llmCtxKeyProvider).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}
