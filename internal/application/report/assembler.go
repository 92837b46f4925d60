package report

import (
	"sort"
	"time"

	wfmodel "tga-report-ai-api/internal/workflow/model"
	apperrors "tga-report-ai-api/pkg/errors"
)

const (
	reportTitle    = "Erläuterungsbericht zum Vorentwurf"
	reportSubtitle = "Technische Gebäudeausrüstung"
	generatedBy    = "TGA AI Planning Assistant"
)

// Assemble 把章节结果按目录顺序组装成文档。
// 顺序只由 SectionSpec.Order 决定，与生成完成顺序无关。
// 所有章节均失败且 failWhenAll 为 true 时整个请求视为失败。
func Assemble(pctx *wfmodel.ProjectContext, results []wfmodel.SectionResult, failWhenAll bool) (*wfmodel.ReportDocument, error) {
	sections := make([]wfmodel.SectionResult, len(results))
	copy(sections, results)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	anyOK := false
	for i := range sections {
		if sections[i].OK() {
			anyOK = true
			break
		}
	}
	if !anyOK && failWhenAll && len(sections) > 0 {
		return nil, apperrors.ErrGenerationFailed.WithDetail("all sections failed")
	}

	return &wfmodel.ReportDocument{
		Meta: wfmodel.ReportMeta{
			Title:        reportTitle,
			Subtitle:     reportSubtitle,
			ProjectName:  pctx.ProjectName,
			Location:     pctx.Location,
			FederalState: pctx.FederalState,
			GeneratedAt:  time.Now(),
			GeneratedBy:  generatedBy,
		},
		Sections: sections,
	}, nil
}
