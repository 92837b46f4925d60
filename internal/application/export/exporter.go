// Package export 把组装完成的报告文档渲染成下载文件。
// 渲染是纯函数式的：同一文档同一格式输出一致。
package export

import (
	"fmt"
	"strings"

	wfmodel "tga-report-ai-api/internal/workflow/model"
	apperrors "tga-report-ai-api/pkg/errors"
	"tga-report-ai-api/pkg/metrics"
)

// Format 导出格式
type Format string

const (
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "markdown"
)

// ParseFormat 解析请求的导出格式，未知格式立即拒绝
func ParseFormat(s string) (Format, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "docx":
		return FormatDOCX, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", apperrors.ErrExportUnsupported.WithDetail(fmt.Sprintf("format %q", s))
	}
}

// Rendered 渲染产物
type Rendered struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Render 按格式渲染文档
func Render(doc *wfmodel.ReportDocument, format Format) (*Rendered, error) {
	if doc == nil {
		return nil, apperrors.New(apperrors.CodeExportFailed, "document is nil")
	}

	var data []byte
	var err error
	var ext, contentType string
	switch format {
	case FormatDOCX:
		data, err = renderDOCX(doc)
		ext = "docx"
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatMarkdown:
		data = renderMarkdown(doc)
		ext = "md"
		contentType = "text/markdown; charset=utf-8"
	default:
		return nil, apperrors.ErrExportUnsupported.WithDetail(string(format))
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExportFailed, "export rendering failed")
	}

	metrics.ExportTotal.WithLabelValues(string(format)).Inc()
	return &Rendered{
		Data:        data,
		Filename:    Filename(doc.Meta.ProjectName, ext),
		ContentType: contentType,
	}, nil
}

// Filename 构建下载文件名，项目名里的路径和空白字符被替换
func Filename(projectName, ext string) string {
	return fmt.Sprintf("Erlaeuterungsbericht_%s.%s", sanitizeName(projectName), ext)
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Projekt"
	}
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		"\"", "",
		"'", "",
		":", "_",
		";", "_",
		"\r", "",
		"\n", "",
	)
	return replacer.Replace(name)
}
