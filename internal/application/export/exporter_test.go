package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	wfmodel "tga-report-ai-api/internal/workflow/model"
	apperrors "tga-report-ai-api/pkg/errors"
)

func testDocument() *wfmodel.ReportDocument {
	return &wfmodel.ReportDocument{
		Meta: wfmodel.ReportMeta{
			Title:        "Erläuterungsbericht zum Vorentwurf",
			Subtitle:     "Technische Gebäudeausrüstung",
			ProjectName:  "Neubau Campus",
			Location:     "Dresden",
			FederalState: "Sachsen",
			GeneratedAt:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
			GeneratedBy:  "TGA AI Planning Assistant",
		},
		Sections: []wfmodel.SectionResult{
			{
				SectionID: "a1_allgemeines",
				Title:     "A.1 Allgemeines",
				Order:     1,
				Content:   wfmodel.FreeformContent("**A.1.1 Projektbeschreibung**\n\nDas Gebäude wird als Bürogebäude errichtet.\n\n- Punkt eins\n- Punkt zwei"),
			},
			{
				SectionID: "a4_kg420",
				Title:     "A.4 KG 420 - Wärmeversorgungsanlagen",
				Order:     4,
				Content:   wfmodel.FailedContent("gateway timeout"),
			},
			{
				SectionID: "b_kosten",
				Title:     "B. Kostenschätzung",
				Order:     10,
				Content: wfmodel.StructuredContent(wfmodel.CostSchemaID, &wfmodel.CostBreakdown{
					KG410: &wfmodel.CostGroup{Amount: 85000, AmountPerArea: 50, Description: "Sanitärinstallation"},
					KG420: &wfmodel.CostGroup{Amount: 136000, AmountPerArea: 80},
					KG430: &wfmodel.CostGroup{Amount: 153000, AmountPerArea: 90},
					KG434: &wfmodel.CostGroup{Amount: 68000, AmountPerArea: 40},
					KG440: &wfmodel.CostGroup{Amount: 187000, AmountPerArea: 110},
					KG470: &wfmodel.CostGroup{Amount: 34000, AmountPerArea: 20},
					KG480: &wfmodel.CostGroup{Amount: 51000, AmountPerArea: 30},
					Total: wfmodel.CostTotal{Amount: 714000, AmountPerArea: 420},

					AccuracyNote: "Kostenschätzung nach DIN 276, Genauigkeit ±30%",
				}),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"docx", FormatDOCX, false},
		{"DOCX", FormatDOCX, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{" Markdown ", FormatMarkdown, false},
		{"pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
				continue
			}
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeExportUnsupported {
				t.Errorf("ParseFormat(%q): err = %v, want unsupported", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	rendered, err := Render(testDocument(), FormatMarkdown)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered.Filename != "Erlaeuterungsbericht_Neubau_Campus.md" {
		t.Errorf("Filename = %q", rendered.Filename)
	}
	if rendered.ContentType != "text/markdown; charset=utf-8" {
		t.Errorf("ContentType = %q", rendered.ContentType)
	}

	md := string(rendered.Data)
	for _, want := range []string{
		"# Neubau Campus",
		"## Erläuterungsbericht zum Vorentwurf",
		"**Standort:** Dresden",
		"**Datum:** 14.03.2026",
		"## Inhaltsverzeichnis",
		"1. A.1 Allgemeines",
		"## A.4 KG 420 - Wärmeversorgungsanlagen",
		"[Abschnitt konnte nicht generiert werden: gateway timeout]",
		"**Kostenschätzung nach DIN 276 (KG 400)**",
		"- KG 410 Abwasser-, Wasser-, Gasanlagen: 85.000,00 € (50,00 €/m²)",
		"**Summe TGA (KG 400)**: 714.000,00 € netto (420,00 €/m²)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// 相同文档两次渲染逐字节一致
	again, err := Render(testDocument(), FormatMarkdown)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if !bytes.Equal(rendered.Data, again.Data) {
		t.Error("markdown rendering is not deterministic")
	}
}

func TestRenderDOCX(t *testing.T) {
	rendered, err := Render(testDocument(), FormatDOCX)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered.Filename != "Erlaeuterungsbericht_Neubau_Campus.docx" {
		t.Errorf("Filename = %q", rendered.Filename)
	}
	if !strings.Contains(rendered.ContentType, "wordprocessingml") {
		t.Errorf("ContentType = %q", rendered.ContentType)
	}
	// DOCX 是 ZIP 容器
	if len(rendered.Data) < 4 || rendered.Data[0] != 'P' || rendered.Data[1] != 'K' {
		t.Error("docx output is not a zip archive")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(testDocument(), Format("pdf")); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := Render(nil, FormatMarkdown); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestFilenameSanitization(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Neubau Campus", "Erlaeuterungsbericht_Neubau_Campus.docx"},
		{"a/b\\c:d", "Erlaeuterungsbericht_a_b_c_d.docx"},
		{`"Projekt"`, "Erlaeuterungsbericht_Projekt.docx"},
		{"   ", "Erlaeuterungsbericht_Projekt.docx"},
		{"", "Erlaeuterungsbericht_Projekt.docx"},
	}
	for _, tt := range tests {
		if got := Filename(tt.name, "docx"); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00"},
		{999.5, "999,50"},
		{1000, "1.000,00"},
		{85000, "85.000,00"},
		{1234567.89, "1.234.567,89"},
		{-4500.25, "-4.500,25"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSectionTextFallbacks(t *testing.T) {
	other := wfmodel.SectionResult{
		Content: wfmodel.StructuredContent("some_other_schema", map[string]int{"a": 1}),
	}
	if got := sectionText(&other); !strings.Contains(got, "some_other_schema") {
		t.Errorf("sectionText for unknown schema = %q", got)
	}
}
