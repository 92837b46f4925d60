package dto

// GenerateReportRequest 报告生成请求（multipart 表单字段）
// 字段校验集中在上下文构建器，这里只做绑定
type GenerateReportRequest struct {
	ProjectName  string `form:"project_name"`
	Location     string `form:"location"`
	ProjectType  string `form:"project_type"`
	FederalState string `form:"federal_state"`
	// ExportFormat docx 或 markdown，缺省 docx
	ExportFormat string `form:"export_format"`
}
