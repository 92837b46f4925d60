package report

import (
	"fmt"
	"strings"

	wfmodel "tga-report-ai-api/internal/workflow/model"
	workflowprompt "tga-report-ai-api/internal/workflow/prompt"
)

// Catalog 返回报告章节目录，顺序即文档内的固定顺序。
// 目录是进程级只读数据，调用方不得修改返回的切片。
func Catalog() []wfmodel.SectionSpec {
	return sectionCatalog
}

var sectionCatalog = []wfmodel.SectionSpec{
	{
		ID:        "a1_allgemeines",
		Title:     "A.1 Allgemeines",
		Order:     1,
		PromptID:  string(workflowprompt.PromptAllgemeinesV1),
		MaxTokens: 2500,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a2_erschliessung",
		Title:     "A.2 KG 220 - Öffentliche Erschließung",
		Order:     2,
		PromptID:  string(workflowprompt.PromptErschliessungV1),
		MaxTokens: 1500,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a3_kg410",
		Title:     "A.3 KG 410 - Abwasser-, Wasser- und Gasanlagen",
		Order:     3,
		PromptID:  string(workflowprompt.PromptKG410V1),
		MaxTokens: 2500,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a4_kg420",
		Title:     "A.4 KG 420 - Wärmeversorgungsanlagen",
		Order:     4,
		PromptID:  string(workflowprompt.PromptKG420V1),
		MaxTokens: 3000,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a5_kg434",
		Title:     "A.5 KG 434 - Kältetechnische Anlagen",
		Order:     5,
		PromptID:  string(workflowprompt.PromptKG434V1),
		MaxTokens: 1500,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a6_kg430",
		Title:     "A.6 KG 430 - Lüftungstechnische Anlagen",
		Order:     6,
		PromptID:  string(workflowprompt.PromptKG430V1),
		MaxTokens: 3000,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a7_kg440",
		Title:     "A.7 KG 440 - Elektroanlagen",
		Order:     7,
		PromptID:  string(workflowprompt.PromptKG440V1),
		MaxTokens: 2500,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a8_kg470",
		Title:     "A.8 KG 470 - Nutzungsspezifische Anlagen",
		Order:     8,
		PromptID:  string(workflowprompt.PromptKG470V1),
		MaxTokens: 1500,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:        "a9_kg480",
		Title:     "A.9 KG 480 - Gebäudeautomation",
		Order:     9,
		PromptID:  string(workflowprompt.PromptKG480V1),
		MaxTokens: 2000,
		Shape:     wfmodel.ShapeFreeform,
	},
	{
		ID:            "b_kosten",
		Title:         "B. Kostenschätzung",
		Order:         10,
		PromptID:      string(workflowprompt.PromptCostBreakdownV1),
		MaxTokens:     2000,
		Shape:         wfmodel.ShapeCostBreakdown,
		ShapeRequired: true,
	},
}

// baseStandards 所有项目共通的 TGA 规范清单
var baseStandards = []string{
	"DIN EN 12831 - Heizlastberechnung",
	"DIN EN 16798 - Energetische Bewertung von Gebäuden - Lüftung",
	"DIN 1946 - Raumlufttechnik",
	"DIN 1988 - Technische Regeln für Trinkwasser-Installationen",
	"DIN 1986 - Entwässerungsanlagen für Gebäude und Grundstücke",
	"VDI 2078 - Kühllastberechnung",
	"VDI 6023 - Hygiene in Trinkwasser-Installationen",
	"DIN VDE 0100 - Errichten von Niederspannungsanlagen",
	"DIN EN 12464-1 - Beleuchtung von Arbeitsstätten",
	"DIN EN ISO 16484 - Gebäudeautomation",
}

// stateBuildingCodes 各联邦州的建筑法规
var stateBuildingCodes = map[string]string{
	"Bayern":              "Bayerische Bauordnung (BayBO)",
	"Baden-Württemberg":   "Landesbauordnung Baden-Württemberg (LBO)",
	"Nordrhein-Westfalen": "Bauordnung NRW (BauO NRW)",
	"Hessen":              "Hessische Bauordnung (HBO)",
	"Berlin":              "Bauordnung Berlin (BauO Bln)",
}

// BuildStandardsText 生成章节 A.1 末尾的规范清单，不经过 LLM。
// 基础清单加上联邦州建筑法规和建筑类型专属规范。
func BuildStandardsText(projectType wfmodel.ProjectType, federalState string) string {
	standards := make([]string, 0, len(baseStandards)+3)
	standards = append(standards, baseStandards...)

	if code, ok := stateBuildingCodes[strings.TrimSpace(federalState)]; ok {
		standards = append(standards, code)
	}

	switch projectType {
	case wfmodel.ProjectTypeLaboratory:
		standards = append(standards,
			"DIN 12924 - Laboreinrichtungen",
			"DIN 1946-7 - Raumlufttechnik in Laboratorien",
		)
	case wfmodel.ProjectTypeHospital:
		standards = append(standards,
			"DIN 1946-4 - Raumlufttechnik in Krankenhäusern",
			"DIN VDE 0100-710 - Medizinisch genutzte Bereiche",
		)
	}

	var b strings.Builder
	b.WriteString("**A.1.5 Relevante Normen und Vorschriften**\n\n")
	for _, std := range standards {
		fmt.Fprintf(&b, "• %s\n", std)
	}
	return strings.TrimRight(b.String(), "\n")
}
