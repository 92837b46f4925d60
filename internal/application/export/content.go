package export

import (
	"fmt"
	"strings"

	wfmodel "tga-report-ai-api/internal/workflow/model"
)

// sectionText 把三态章节内容统一成可渲染的文本。
// 结构化成本分组转成带 **小标题** 的文本块，
// 失败章节输出德语占位说明而不是被丢弃。
func sectionText(result *wfmodel.SectionResult) string {
	switch result.Content.Kind {
	case wfmodel.ContentFreeform:
		return result.Content.Text
	case wfmodel.ContentStructured:
		if breakdown, ok := result.Content.Structured.(*wfmodel.CostBreakdown); ok {
			return costBreakdownText(breakdown)
		}
		return fmt.Sprintf("[Strukturierter Inhalt, Schema %s]", result.Content.SchemaID)
	default:
		return fmt.Sprintf("[Abschnitt konnte nicht generiert werden: %s]", result.Content.FailReason)
	}
}

// costBreakdownText 渲染 DIN 276 成本分解，分组顺序固定
func costBreakdownText(b *wfmodel.CostBreakdown) string {
	var sb strings.Builder
	sb.WriteString("**Kostenschätzung nach DIN 276 (KG 400)**\n\n")

	for _, code := range wfmodel.CostGroupCodes {
		group := b.GroupByCode(code)
		if group == nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s € (%s €/m²)\n",
			wfmodel.CostGroupTitles[code], formatAmount(group.Amount), formatAmount(group.AmountPerArea))
		if desc := strings.TrimSpace(group.Description); desc != "" {
			fmt.Fprintf(&sb, "  %s\n", desc)
		}
	}

	fmt.Fprintf(&sb, "\n**Summe TGA (KG 400)**: %s € netto (%s €/m²)\n",
		formatAmount(b.Total.Amount), formatAmount(b.Total.AmountPerArea))

	if b.AccuracyNote != "" {
		fmt.Fprintf(&sb, "\n%s\n", b.AccuracyNote)
	}
	for _, remark := range b.Remarks {
		fmt.Fprintf(&sb, "\n%s\n", remark)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatAmount 德式数字：千位点，两位小数逗号
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	out := grouped.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
