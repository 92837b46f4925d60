package chain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"tga-report-ai-api/internal/config"
	wfmodel "tga-report-ai-api/internal/workflow/model"
	workflowprompt "tga-report-ai-api/internal/workflow/prompt"
	apperrors "tga-report-ai-api/pkg/errors"
)

// fakeChatModel 按预设脚本逐次返回回复或错误
type fakeChatModel struct {
	mu      sync.Mutex
	calls   int
	replies []string
	errs    []error
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	reply := ""
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: reply,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 340},
		},
	}, nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (m *fakeChatModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeFactory struct {
	model model.BaseChatModel
	err   error
}

func (f *fakeFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func testRetryConfig(attempts int) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts: attempts,
		Backoff: config.BackoffConfig{
			Initial:    time.Millisecond,
			Max:        5 * time.Millisecond,
			Multiplier: 2,
		},
	}
}

func testInput() *wfmodel.SectionGenerateInput {
	return &wfmodel.SectionGenerateInput{
		SectionID: "a3_kg410",
		PromptID:  string(workflowprompt.PromptKG410V1),
		Vars: map[string]any{
			"project_context":    "PROJEKT-KONTEXT FÜR ERLÄUTERUNGSBERICHT:\n\nProjektname: Testprojekt",
			"project_type_label": "Bürogebäude",
			"federal_state":      "Bayern",
			"location":           "München",
		},
		MaxTokens: 1000,
	}
}

func TestSectionChainInvoke(t *testing.T) {
	fake := &fakeChatModel{replies: []string{"Die Trinkwasserversorgung erfolgt über den öffentlichen Anschluss."}}
	c := NewSectionChain(&fakeFactory{model: fake}, workflowprompt.NewRegistry(), testRetryConfig(3))

	out, err := c.Invoke(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out.RawReply == "" {
		t.Error("RawReply is empty")
	}
	if out.Meta.PromptTokens != 120 || out.Meta.CompletionTokens != 340 {
		t.Errorf("usage = %d/%d, want 120/340", out.Meta.PromptTokens, out.Meta.CompletionTokens)
	}
	if fake.callCount() != 1 {
		t.Errorf("calls = %d, want 1", fake.callCount())
	}
}

func TestSectionChainRetriesOnTimeout(t *testing.T) {
	fake := &fakeChatModel{
		errs:    []error{errors.New("upstream timeout"), nil},
		replies: []string{"", "Abschnitt erzeugt."},
	}
	c := NewSectionChain(&fakeFactory{model: fake}, workflowprompt.NewRegistry(), testRetryConfig(3))

	out, err := c.Invoke(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Invoke failed after retry: %v", err)
	}
	if out.RawReply != "Abschnitt erzeugt." {
		t.Errorf("RawReply = %q", out.RawReply)
	}
	if fake.callCount() != 2 {
		t.Errorf("calls = %d, want 2", fake.callCount())
	}
}

func TestSectionChainNoRetryOnAuthFailure(t *testing.T) {
	fake := &fakeChatModel{errs: []error{errors.New("status 401: invalid api key")}}
	c := NewSectionChain(&fakeFactory{model: fake}, workflowprompt.NewRegistry(), testRetryConfig(3))

	_, err := c.Invoke(context.Background(), testInput())
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is %T, want *AppError", err)
	}
	if appErr.Code != apperrors.CodeGatewayAuth {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeGatewayAuth)
	}
	if fake.callCount() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", fake.callCount())
	}
}

func TestSectionChainExhaustsRetries(t *testing.T) {
	fake := &fakeChatModel{
		errs: []error{
			errors.New("request failed with status 429"),
			errors.New("request failed with status 429"),
			errors.New("request failed with status 429"),
		},
	}
	c := NewSectionChain(&fakeFactory{model: fake}, workflowprompt.NewRegistry(), testRetryConfig(3))

	_, err := c.Invoke(context.Background(), testInput())
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is %T, want *AppError", err)
	}
	if appErr.Code != apperrors.CodeGatewayRateLimited {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeGatewayRateLimited)
	}
	if appErr.Message != apperrors.ErrGatewayRateLimited.Message {
		t.Errorf("message = %q, want the predefined gateway error", appErr.Message)
	}
	if fake.callCount() != 3 {
		t.Errorf("calls = %d, want 3", fake.callCount())
	}
}

func TestSectionChainEmptyReplyIsError(t *testing.T) {
	fake := &fakeChatModel{replies: []string{"   "}}
	c := NewSectionChain(&fakeFactory{model: fake}, workflowprompt.NewRegistry(), testRetryConfig(1))

	if _, err := c.Invoke(context.Background(), testInput()); err == nil {
		t.Fatal("expected error for empty llm reply")
	}
}

func TestSectionChainCanceledContext(t *testing.T) {
	fake := &fakeChatModel{errs: []error{context.Canceled}}
	c := NewSectionChain(&fakeFactory{model: fake}, workflowprompt.NewRegistry(), testRetryConfig(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Invoke(ctx, testInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if fake.callCount() > 1 {
		t.Errorf("calls = %d, canceled request must not retry", fake.callCount())
	}
}

func TestSectionChainValidatesInput(t *testing.T) {
	c := NewSectionChain(&fakeFactory{model: &fakeChatModel{}}, workflowprompt.NewRegistry(), testRetryConfig(1))

	if _, err := c.Invoke(context.Background(), nil); err == nil {
		t.Error("nil input must fail")
	}

	in := testInput()
	in.SectionID = ""
	if _, err := c.Invoke(context.Background(), in); err == nil {
		t.Error("missing section id must fail")
	}

	in = testInput()
	in.PromptID = "does_not_exist"
	if _, err := c.Invoke(context.Background(), in); err == nil {
		t.Error("unknown prompt id must fail")
	}
}

func TestSectionChainFactoryError(t *testing.T) {
	c := NewSectionChain(&fakeFactory{err: errors.New("provider not configured")}, workflowprompt.NewRegistry(), testRetryConfig(1))

	_, err := c.Invoke(context.Background(), testInput())
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeGatewayUnreachable {
		t.Fatalf("err = %v, want unreachable app error", err)
	}
}
