package export

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"

	wfmodel "tga-report-ai-api/internal/workflow/model"
)

// 字号为半磅值字符串，36 = 18pt
const (
	sizeTitle      = "36"
	sizeSubtitle   = "32"
	sizeSubtitle2  = "28"
	sizeHeading    = "28"
	sizeSubheading = "24"
)

// renderDOCX 渲染 DOCX 导出：标题页、目录占位、按目录顺序的章节
func renderDOCX(doc *wfmodel.ReportDocument) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	addTitlePage(w, doc)

	heading := w.AddParagraph()
	heading.AddText("Inhaltsverzeichnis").Size(sizeHeading).Bold()
	w.AddParagraph().AddText("[Inhaltsverzeichnis wird in Microsoft Word automatisch erstellt]")
	w.AddParagraph().AddText("In Word: Referenzen → Inhaltsverzeichnis → Automatisches Verzeichnis")
	w.AddParagraph().AddPageBreaks()

	for i := range doc.Sections {
		section := &doc.Sections[i]
		h := w.AddParagraph()
		h.AddText(section.Title).Size(sizeHeading).Bold()
		addFormattedContent(w, sectionText(section))
		if i < len(doc.Sections)-1 {
			w.AddParagraph().AddPageBreaks()
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addTitlePage(w *docx.Docx, doc *wfmodel.ReportDocument) {
	title := w.AddParagraph()
	title.AddText(doc.Meta.ProjectName).Size(sizeTitle).Bold()
	title.Justification("center")

	w.AddParagraph()

	subtitle := w.AddParagraph()
	subtitle.AddText(doc.Meta.Title).Size(sizeSubtitle).Bold()
	subtitle.Justification("center")

	w.AddParagraph()

	subtitle2 := w.AddParagraph()
	subtitle2.AddText(doc.Meta.Subtitle).Size(sizeSubtitle2)
	subtitle2.Justification("center")

	w.AddParagraph()
	w.AddParagraph()
	w.AddParagraph()

	addMetaLine(w, "Standort: ", doc.Meta.Location)
	w.AddParagraph()
	addMetaLine(w, "Datum: ", doc.Meta.GeneratedAt.Format("02.01.2006"))
	w.AddParagraph()
	addMetaLine(w, "Erstellt mit: ", doc.Meta.GeneratedBy)

	w.AddParagraph().AddPageBreaks()
}

func addMetaLine(w *docx.Docx, label, value string) {
	p := w.AddParagraph()
	p.AddText(label).Bold()
	p.AddText(value)
	p.Justification("center")
}

// addFormattedContent 渲染带轻量 Markdown 标记的章节文本。
// 支持 **粗体**、整段粗体作为小标题、"- " / "• " 项目行。
func addFormattedContent(w *docx.Docx, content string) {
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			addFormattedLine(w, line)
		}
		w.AddParagraph()
	}
}

func addFormattedLine(w *docx.Docx, line string) {
	// 整行 **...** 视为小标题
	if strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && strings.Count(line, "**") == 2 {
		p := w.AddParagraph()
		p.AddText(strings.Trim(line, "*")).Size(sizeSubheading).Bold()
		return
	}

	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "• ") {
		rest := strings.TrimPrefix(strings.TrimPrefix(line, "- "), "• ")
		p := w.AddParagraph()
		p.AddText("• ")
		addInlineRuns(p, strings.TrimSpace(rest))
		return
	}

	p := w.AddParagraph()
	addInlineRuns(p, line)
}

// addInlineRuns 按 ** 分隔交替输出普通和粗体文本
func addInlineRuns(p *docx.Paragraph, text string) {
	parts := strings.Split(text, "**")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i%2 == 1 {
			p.AddText(part).Bold()
		} else {
			p.AddText(part)
		}
	}
}
