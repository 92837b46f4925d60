package cost

import (
	"fmt"
	"strings"

	wfmodel "tga-report-ai-api/internal/workflow/model"
)

// BenchmarkRange 单位面积成本经验区间（€/m² BGF, netto）
type BenchmarkRange struct {
	Min float64
	Max float64
}

// benchmarks 按建筑类型 x 成本分组的经验区间。
// 数值基于 BKI 成本指标量级，用于引导和合理性检查，不是报价。
var benchmarks = map[wfmodel.ProjectType]map[string]BenchmarkRange{
	wfmodel.ProjectTypeOffice: {
		"kg_410": {40, 70},
		"kg_420": {60, 100},
		"kg_430": {60, 110},
		"kg_434": {30, 60},
		"kg_440": {90, 140},
		"kg_470": {10, 30},
		"kg_480": {20, 45},
	},
	wfmodel.ProjectTypeLaboratory: {
		"kg_410": {70, 120},
		"kg_420": {80, 130},
		"kg_430": {150, 260},
		"kg_434": {60, 110},
		"kg_440": {120, 190},
		"kg_470": {60, 140},
		"kg_480": {40, 80},
	},
	wfmodel.ProjectTypeHospital: {
		"kg_410": {80, 130},
		"kg_420": {90, 140},
		"kg_430": {140, 240},
		"kg_434": {60, 110},
		"kg_440": {140, 220},
		"kg_470": {80, 160},
		"kg_480": {50, 90},
	},
	wfmodel.ProjectTypeSchool: {
		"kg_410": {35, 60},
		"kg_420": {55, 90},
		"kg_430": {45, 85},
		"kg_434": {10, 30},
		"kg_440": {70, 110},
		"kg_470": {15, 40},
		"kg_480": {15, 35},
	},
	wfmodel.ProjectTypeResidential: {
		"kg_410": {45, 75},
		"kg_420": {50, 85},
		"kg_430": {20, 45},
		"kg_434": {5, 20},
		"kg_440": {55, 90},
		"kg_470": {5, 15},
		"kg_480": {10, 25},
	},
}

// BenchmarksFor 返回建筑类型的成本区间，未知类型回退到办公楼
func BenchmarksFor(t wfmodel.ProjectType) map[string]BenchmarkRange {
	if b, ok := benchmarks[t]; ok {
		return b
	}
	return benchmarks[wfmodel.ProjectTypeOffice]
}

// RenderBenchmarkTable 渲染提示词内的成本区间表，分组顺序固定
func RenderBenchmarkTable(t wfmodel.ProjectType) string {
	ranges := BenchmarksFor(t)
	var b strings.Builder
	for _, code := range wfmodel.CostGroupCodes {
		r, ok := ranges[code]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %.0f - %.0f €/m²\n", wfmodel.CostGroupTitles[code], r.Min, r.Max)
	}
	return strings.TrimRight(b.String(), "\n")
}
