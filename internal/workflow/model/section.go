package model

import (
	"time"
)

// ExpectedShape 章节期望的回复形态
type ExpectedShape string

const (
	// ShapeFreeform 纯文本回复
	ShapeFreeform ExpectedShape = "freeform"
	// ShapeCostBreakdown DIN 276 成本分组 JSON
	ShapeCostBreakdown ExpectedShape = "cost_breakdown"
)

// SectionSpec 静态章节规格，进程级只读目录的条目
type SectionSpec struct {
	ID    string
	Title string
	// Order 决定文档内的固定顺序，与生成完成顺序无关
	Order     int
	PromptID  string
	MaxTokens int
	Shape     ExpectedShape
	// ShapeRequired 为 true 时结构化解析失败记为章节失败；
	// 否则降级为自由文本收录
	ShapeRequired bool
	// Static 为 true 的章节不经过 LLM，由目录直接给出内容
	Static bool
}

// SectionState 章节状态机
type SectionState string

const (
	StatePending      SectionState = "pending"
	StateRequested    SectionState = "requested"
	StateRepliedOK    SectionState = "replied_ok"
	StateRepliedError SectionState = "replied_error"
	StateParsed       SectionState = "parsed"
	StateFinalized    SectionState = "finalized"
)

// ContentKind 章节内容的标签
type ContentKind string

const (
	ContentStructured ContentKind = "structured"
	ContentFreeform   ContentKind = "freeform"
	ContentFailed     ContentKind = "failed"
)

// SectionContent 三态章节内容
// 解析永不抛错，所有结果都是带标签的值
type SectionContent struct {
	Kind ContentKind

	// SchemaID / Structured 仅 Kind == ContentStructured 时有效
	SchemaID   string
	Structured any

	// Text 仅 Kind == ContentFreeform 时有效
	Text string

	// FailReason 仅 Kind == ContentFailed 时有效
	FailReason string
}

// StructuredContent 构造结构化内容
func StructuredContent(schemaID string, payload any) SectionContent {
	return SectionContent{Kind: ContentStructured, SchemaID: schemaID, Structured: payload}
}

// FreeformContent 构造自由文本内容
func FreeformContent(text string) SectionContent {
	return SectionContent{Kind: ContentFreeform, Text: text}
}

// FailedContent 构造失败内容
func FailedContent(reason string) SectionContent {
	return SectionContent{Kind: ContentFailed, FailReason: reason}
}

// SectionResult 单章节单请求的生成结果，创建后不再修改
type SectionResult struct {
	SectionID string
	Title     string
	Order     int
	State     SectionState
	// RawReply 模型原文，硬失败时为空
	RawReply string
	Content  SectionContent
}

// OK 章节是否产出了可用内容
func (r *SectionResult) OK() bool {
	return r != nil && r.Content.Kind != ContentFailed
}

// ReportMeta 报告元数据
type ReportMeta struct {
	Title        string
	Subtitle     string
	ProjectName  string
	Location     string
	FederalState string
	GeneratedAt  time.Time
	GeneratedBy  string
}

// ReportDocument 组装完成的报告，按 SectionSpec.Order 排序
// 构建一次，被导出器消费一次，不持久化
type ReportDocument struct {
	Meta     ReportMeta
	Sections []SectionResult
}
