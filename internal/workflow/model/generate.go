package model

import "time"

// SectionGenerateInput 单章节 LLM 调用输入
type SectionGenerateInput struct {
	SectionID string
	PromptID  string
	// Vars 提示词模板变量
	Vars map[string]any

	Provider  string
	Model     string
	MaxTokens int
	// Timeout 单次调用截止时间，0 表示仅受请求截止时间约束
	Timeout time.Duration
}

// LLMUsageMeta 单次调用的用量元信息
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}

// SectionGenerateOutput 单章节 LLM 调用输出（原文）
type SectionGenerateOutput struct {
	RawReply string
	Meta     LLMUsageMeta
}
