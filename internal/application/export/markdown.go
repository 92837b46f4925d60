package export

import (
	"fmt"
	"strings"

	wfmodel "tga-report-ai-api/internal/workflow/model"
)

// renderMarkdown 渲染 Markdown 导出。
// 布局固定：标题页、元数据、分隔线，然后按目录顺序逐章节输出。
func renderMarkdown(doc *wfmodel.ReportDocument) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Meta.ProjectName)
	fmt.Fprintf(&b, "## %s\n", doc.Meta.Title)
	fmt.Fprintf(&b, "### %s\n\n", doc.Meta.Subtitle)

	fmt.Fprintf(&b, "**Standort:** %s  \n", doc.Meta.Location)
	fmt.Fprintf(&b, "**Datum:** %s  \n", doc.Meta.GeneratedAt.Format("02.01.2006"))
	fmt.Fprintf(&b, "**Erstellt mit:** %s\n\n", doc.Meta.GeneratedBy)

	b.WriteString("---\n\n")
	b.WriteString("## Inhaltsverzeichnis\n\n")
	for i := range doc.Sections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, doc.Sections[i].Title)
	}
	b.WriteString("\n---\n")

	for i := range doc.Sections {
		section := &doc.Sections[i]
		fmt.Fprintf(&b, "\n## %s\n\n", section.Title)
		b.WriteString(sectionText(section))
		b.WriteString("\n\n---\n")
	}

	return []byte(b.String())
}
