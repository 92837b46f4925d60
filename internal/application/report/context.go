package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"tga-report-ai-api/internal/infrastructure/mlserve"
	wfmodel "tga-report-ai-api/internal/workflow/model"
	apperrors "tga-report-ai-api/pkg/errors"
)

// ContextBuilder 把请求字段和可选的上传表格组装成不可变的项目上下文。
// ML 推理仅用于丰富上下文，失败只记警告不会中断。
type ContextBuilder struct {
	ml              *mlserve.Client
	maxClassifyRows int
	logger          *slog.Logger
}

func NewContextBuilder(ml *mlserve.Client, maxClassifyRows int, logger *slog.Logger) *ContextBuilder {
	if maxClassifyRows <= 0 {
		maxClassifyRows = 50
	}
	return &ContextBuilder{ml: ml, maxClassifyRows: maxClassifyRows, logger: logger}
}

// BuildInput 上下文构建输入，表格已由上传解析层转为键值行
type BuildInput struct {
	ProjectName  string
	Location     string
	ProjectType  string
	FederalState string

	RoomTable []wfmodel.TableRow
	CostTable []wfmodel.TableRow
}

// Build 校验输入并构建项目上下文。
// 所有校验问题一次性汇总返回，而不是在第一个问题处停下。
func (b *ContextBuilder) Build(ctx context.Context, in BuildInput) (*wfmodel.ProjectContext, error) {
	var problems []string
	if strings.TrimSpace(in.ProjectName) == "" {
		problems = append(problems, "project_name is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		problems = append(problems, "location is required")
	}
	projectType := wfmodel.ProjectType(strings.TrimSpace(strings.ToLower(in.ProjectType)))
	if !wfmodel.ValidProjectType(projectType) {
		problems = append(problems, fmt.Sprintf("project_type %q is not supported", in.ProjectType))
	}
	if strings.TrimSpace(in.FederalState) == "" {
		problems = append(problems, "federal_state is required")
	}
	if len(problems) > 0 {
		return nil, apperrors.ErrContextInvalid.WithDetail(strings.Join(problems, "; "))
	}

	pctx := &wfmodel.ProjectContext{
		ProjectName:  strings.TrimSpace(in.ProjectName),
		Location:     strings.TrimSpace(in.Location),
		ProjectType:  projectType,
		FederalState: strings.TrimSpace(in.FederalState),
		RoomTable:    in.RoomTable,
		CostTable:    in.CostTable,
	}

	if len(in.RoomTable) > 0 {
		pctx.RoomSummary = b.summarizeRooms(ctx, in.RoomTable)
	}
	return pctx, nil
}

func (b *ContextBuilder) summarizeRooms(ctx context.Context, rows []wfmodel.TableRow) *wfmodel.RoomSummary {
	summary := &wfmodel.RoomSummary{
		TotalRooms: len(rows),
		RoomTypes:  make(map[string]int),
	}

	var totalVolume, totalHeatingKW float64
	classified := 0
	for _, row := range rows {
		area := parseCell(row, "area_m2")
		summary.TotalAreaM2 += area
		totalVolume += parseCell(row, "volume_m3")
		totalHeatingKW += parseCell(row, "total_heating_load_kw")

		roomType := strings.TrimSpace(row["room_type"])
		if roomType == "" && b.ml.Enabled() && classified < b.maxClassifyRows {
			classified++
			no, err := b.ml.PredictRoomType(ctx, mlserve.RoomFeatures{
				VolumeM3:           parseCell(row, "volume_m3"),
				AreaM2:             area,
				TotalHeatingLoadKW: parseCell(row, "total_heating_load_kw"),
			})
			if err != nil {
				b.logger.WarnContext(ctx, "room type prediction failed", "error", err)
			} else {
				roomType = fmt.Sprintf("Raumtyp %d", no)
			}
		}
		if roomType == "" {
			roomType = "unbekannt"
		}
		summary.RoomTypes[roomType]++
	}

	if b.ml.Enabled() && summary.TotalAreaM2 > 0 {
		pred, err := b.ml.PredictLoad(ctx, mlserve.LoadFeatures{
			AreaM2:   summary.TotalAreaM2,
			VolumeM3: totalVolume,
		})
		if err != nil {
			b.logger.WarnContext(ctx, "load prediction failed", "error", err)
		} else {
			summary.HeatingWPerM2 = pred.HeatingWPerM2
			summary.CoolingWPerM2 = pred.CoolingWPerM2
		}
	}
	return summary
}

// parseCell 解析数值单元格，接受德式小数逗号，缺失或不可解析记 0
func parseCell(row wfmodel.TableRow, key string) float64 {
	raw := strings.TrimSpace(row[key])
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// RenderContextBlock 渲染提示词共用的德语项目上下文块。
// 对相同上下文输出逐字节一致。
func RenderContextBlock(pctx *wfmodel.ProjectContext) string {
	var b strings.Builder
	b.WriteString("PROJEKT-KONTEXT FÜR ERLÄUTERUNGSBERICHT:\n\n")
	fmt.Fprintf(&b, "Projektname: %s\n", pctx.ProjectName)
	fmt.Fprintf(&b, "Standort: %s\n", pctx.Location)
	fmt.Fprintf(&b, "Gebäudetyp: %s\n", pctx.ProjectType.GermanLabel())
	fmt.Fprintf(&b, "Bundesland: %s\n", pctx.FederalState)

	if s := pctx.RoomSummary; s != nil {
		b.WriteString("\nGEBÄUDEDATEN:\n")
		fmt.Fprintf(&b, "- Anzahl Räume: %d\n", s.TotalRooms)
		if s.TotalAreaM2 > 0 {
			fmt.Fprintf(&b, "- Gesamtfläche: %.1f m² (geschätzt)\n", s.TotalAreaM2)
		}
		if len(s.RoomTypes) > 0 {
			fmt.Fprintf(&b, "- Raumtypen: %s\n", formatRoomTypes(s.RoomTypes, 5))
		}
		if s.HeatingWPerM2 > 0 {
			fmt.Fprintf(&b, "- Spezifische Heizlast: %.0f W/m² (geschätzt)\n", s.HeatingWPerM2)
		}
		if s.CoolingWPerM2 > 0 {
			fmt.Fprintf(&b, "- Spezifische Kühllast: %.0f W/m² (geschätzt)\n", s.CoolingWPerM2)
		}
	}

	if pctx.HasCostTable() {
		fmt.Fprintf(&b, "\nKOSTENDATEN: %d Positionen verfügbar\n", len(pctx.CostTable))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatRoomTypes 按数量降序、名称升序给出前 n 个房间类型
func formatRoomTypes(types map[string]int, n int) string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if types[names[i]] != types[names[j]] {
			return types[names[i]] > types[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, types[name]))
	}
	return strings.Join(parts, ", ")
}

// PromptVars 章节提示词的模板变量
func PromptVars(pctx *wfmodel.ProjectContext) map[string]any {
	return map[string]any{
		"project_context":    RenderContextBlock(pctx),
		"project_type_label": pctx.ProjectType.GermanLabel(),
		"federal_state":      pctx.FederalState,
		"location":           pctx.Location,
	}
}
