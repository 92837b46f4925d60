package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	wfmodel "tga-report-ai-api/internal/workflow/model"
	apperrors "tga-report-ai-api/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validBuildInput() BuildInput {
	return BuildInput{
		ProjectName:  "Neubau Laborgebäude",
		Location:     "München",
		ProjectType:  "laboratory",
		FederalState: "Bayern",
	}
}

func TestContextBuilderCollectsAllProblems(t *testing.T) {
	b := NewContextBuilder(nil, 0, testLogger())

	_, err := b.Build(context.Background(), BuildInput{ProjectType: "castle"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is %T, want *AppError", err)
	}
	if appErr.Code != apperrors.CodeContextInvalid {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeContextInvalid)
	}
	for _, want := range []string{"project_name", "location", "project_type", "federal_state"} {
		if !strings.Contains(appErr.Detail, want) {
			t.Errorf("detail %q missing %q", appErr.Detail, want)
		}
	}
}

func TestContextBuilderNormalizesProjectType(t *testing.T) {
	b := NewContextBuilder(nil, 0, testLogger())

	in := validBuildInput()
	in.ProjectType = "  Laboratory "
	pctx, err := b.Build(context.Background(), in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if pctx.ProjectType != wfmodel.ProjectTypeLaboratory {
		t.Errorf("ProjectType = %s, want laboratory", pctx.ProjectType)
	}
}

func TestContextBuilderRoomSummary(t *testing.T) {
	b := NewContextBuilder(nil, 0, testLogger())

	in := validBuildInput()
	in.RoomTable = []wfmodel.TableRow{
		{"room_type": "Büro", "area_m2": "120,5", "volume_m3": "361.5"},
		{"room_type": "Büro", "area_m2": "80", "volume_m3": "240"},
		{"room_type": "Labor", "area_m2": "59.5", "volume_m3": "178,5"},
		{"room_type": "", "area_m2": "nicht messbar"},
	}

	pctx, err := b.Build(context.Background(), in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	s := pctx.RoomSummary
	if s == nil {
		t.Fatal("RoomSummary is nil")
	}
	if s.TotalRooms != 4 {
		t.Errorf("TotalRooms = %d, want 4", s.TotalRooms)
	}
	if s.TotalAreaM2 != 260 {
		t.Errorf("TotalAreaM2 = %v, want 260 (german comma accepted, junk counts as 0)", s.TotalAreaM2)
	}
	if s.RoomTypes["Büro"] != 2 || s.RoomTypes["Labor"] != 1 {
		t.Errorf("RoomTypes = %v", s.RoomTypes)
	}
	// 无 ML 推理时缺失类型记为 unbekannt
	if s.RoomTypes["unbekannt"] != 1 {
		t.Errorf("unbekannt = %d, want 1", s.RoomTypes["unbekannt"])
	}
}

func TestRenderContextBlockDeterministic(t *testing.T) {
	pctx := &wfmodel.ProjectContext{
		ProjectName:  "Campus West",
		Location:     "Berlin",
		ProjectType:  wfmodel.ProjectTypeOffice,
		FederalState: "Berlin",
		RoomSummary: &wfmodel.RoomSummary{
			TotalRooms:    12,
			TotalAreaM2:   480.5,
			RoomTypes:     map[string]int{"Büro": 8, "Besprechung": 3, "Technik": 1},
			HeatingWPerM2: 55,
		},
		CostTable: []wfmodel.TableRow{{"pos": "1"}},
	}

	first := RenderContextBlock(pctx)
	for i := 0; i < 10; i++ {
		if got := RenderContextBlock(pctx); got != first {
			t.Fatal("RenderContextBlock is not deterministic for identical input")
		}
	}

	for _, want := range []string{
		"PROJEKT-KONTEXT FÜR ERLÄUTERUNGSBERICHT:",
		"Projektname: Campus West",
		"Gebäudetyp: Bürogebäude",
		"Bundesland: Berlin",
		"- Anzahl Räume: 12",
		"- Gesamtfläche: 480.5 m² (geschätzt)",
		"- Raumtypen: Büro: 8, Besprechung: 3, Technik: 1",
		"- Spezifische Heizlast: 55 W/m² (geschätzt)",
		"KOSTENDATEN: 1 Positionen verfügbar",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("context block missing %q\n%s", want, first)
		}
	}
}

func TestFormatRoomTypesOrdering(t *testing.T) {
	types := map[string]int{"Flur": 2, "Büro": 5, "Archiv": 2, "Labor": 7}
	got := formatRoomTypes(types, 3)
	// 数量降序，数量相同按名称升序，截断到 n 个
	want := "Labor: 7, Büro: 5, Archiv: 2"
	if got != want {
		t.Errorf("formatRoomTypes = %q, want %q", got, want)
	}
}

func TestPromptVars(t *testing.T) {
	pctx := &wfmodel.ProjectContext{
		ProjectName:  "Schulneubau",
		Location:     "Wiesbaden",
		ProjectType:  wfmodel.ProjectTypeSchool,
		FederalState: "Hessen",
	}
	vars := PromptVars(pctx)
	if vars["project_type_label"] != "Schulgebäude" {
		t.Errorf("project_type_label = %v", vars["project_type_label"])
	}
	if vars["federal_state"] != "Hessen" || vars["location"] != "Wiesbaden" {
		t.Errorf("vars = %v", vars)
	}
	if !strings.Contains(vars["project_context"].(string), "Projektname: Schulneubau") {
		t.Error("project_context missing project name")
	}
}
