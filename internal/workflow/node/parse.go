package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"tga-report-ai-api/internal/workflow/model"
)

// Parse 将模型原文按期望形态归入三态内容。
// 纯函数，任何输入都返回带标签的值，不会 panic。
//
// 期望自由文本：整段原文（去掉围栏标记）作为 FreeformContent。
// 期望成本分组：截取首个顶层 JSON 并按 schema 校验；
// 找不到 JSON 或校验失败时返回 FailedContent。
func Parse(raw string, shape model.ExpectedShape) model.SectionContent {
	switch shape {
	case model.ShapeCostBreakdown:
		breakdown, err := ParseCostBreakdown(raw)
		if err != nil {
			return model.FailedContent(err.Error())
		}
		return model.StructuredContent(model.CostSchemaID, breakdown)
	default:
		text := strings.TrimSpace(StripCodeFences(raw))
		if text == "" {
			return model.FailedContent("empty reply")
		}
		return model.FreeformContent(text)
	}
}

// ParseCostBreakdown 从原文中解析并校验成本分组
func ParseCostBreakdown(raw string) (*model.CostBreakdown, error) {
	jsonText := ExtractJSON(raw)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("no json object found in reply")
	}

	dec := json.NewDecoder(strings.NewReader(jsonText))
	// 数值字段必须是数字；"betrag": "5000" 这类字符串视为不符合 schema
	dec.DisallowUnknownFields()
	var breakdown model.CostBreakdown
	if err := dec.Decode(&breakdown); err != nil {
		// 未知字段不算失败，模型偶尔会附带额外键；重新宽松解析
		var retry model.CostBreakdown
		if err2 := json.Unmarshal([]byte(jsonText), &retry); err2 != nil {
			return nil, fmt.Errorf("cost json does not match schema: %w", err2)
		}
		breakdown = retry
	}

	var missing []string
	for _, code := range model.CostGroupCodes {
		if breakdown.GroupByCode(code) == nil {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("cost json missing groups: %s", strings.Join(missing, ", "))
	}
	for _, code := range model.CostGroupCodes {
		g := breakdown.GroupByCode(code)
		if g.Amount < 0 || g.AmountPerArea < 0 {
			return nil, fmt.Errorf("cost group %s has negative amount", code)
		}
	}
	if breakdown.Total.Amount <= 0 {
		return nil, fmt.Errorf("cost json missing gesamt_kg_400 total")
	}
	return &breakdown, nil
}

// ExtractJSON 从可能夹杂前后缀噪音（解释性文字、代码围栏）的
// 文本中截取首个顶层 JSON 对象/数组。
// 无法确认 JSON 有效时回退为空串，由调用方判定失败。
func ExtractJSON(s string) string {
	raw := strings.TrimSpace(StripCodeFences(s))
	if raw == "" {
		return ""
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start := -1
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start = objStart
	case arrStart >= 0:
		start = arrStart
	default:
		return ""
	}

	// 从起点起找到首个完整 JSON 值的终点
	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	dec.UseNumber()
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ""
			}
			return ""
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
			if depth == 0 {
				end := start + int(dec.InputOffset())
				return raw[start:end]
			}
		}
	}
}

// StripCodeFences 去掉 Markdown 代码围栏标记行（```json 等）
func StripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
