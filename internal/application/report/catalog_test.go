package report

import (
	"strings"
	"testing"

	wfmodel "tga-report-ai-api/internal/workflow/model"
)

func TestCatalogOrdering(t *testing.T) {
	specs := Catalog()
	if len(specs) != 10 {
		t.Fatalf("catalog has %d sections, want 10", len(specs))
	}

	seenIDs := make(map[string]bool)
	for i, spec := range specs {
		if spec.Order != i+1 {
			t.Errorf("section %s has order %d, want %d", spec.ID, spec.Order, i+1)
		}
		if seenIDs[spec.ID] {
			t.Errorf("duplicate section id %s", spec.ID)
		}
		seenIDs[spec.ID] = true
		if spec.Title == "" || spec.PromptID == "" {
			t.Errorf("section %s incomplete: %+v", spec.ID, spec)
		}
	}

	last := specs[len(specs)-1]
	if last.ID != "b_kosten" || last.Shape != wfmodel.ShapeCostBreakdown || !last.ShapeRequired {
		t.Errorf("cost section misconfigured: %+v", last)
	}
}

func TestBuildStandardsText(t *testing.T) {
	t.Run("base list with state code", func(t *testing.T) {
		got := BuildStandardsText(wfmodel.ProjectTypeOffice, "Bayern")
		for _, want := range []string{
			"**A.1.5 Relevante Normen und Vorschriften**",
			"• DIN EN 12831 - Heizlastberechnung",
			"• Bayerische Bauordnung (BayBO)",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("standards text missing %q", want)
			}
		}
		if strings.Contains(got, "Laboratorien") {
			t.Error("office building must not get laboratory standards")
		}
	})

	t.Run("laboratory extras", func(t *testing.T) {
		got := BuildStandardsText(wfmodel.ProjectTypeLaboratory, "Hessen")
		for _, want := range []string{
			"• DIN 12924 - Laboreinrichtungen",
			"• DIN 1946-7 - Raumlufttechnik in Laboratorien",
			"• Hessische Bauordnung (HBO)",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("standards text missing %q", want)
			}
		}
	})

	t.Run("hospital extras", func(t *testing.T) {
		got := BuildStandardsText(wfmodel.ProjectTypeHospital, "Berlin")
		if !strings.Contains(got, "DIN 1946-4") || !strings.Contains(got, "DIN VDE 0100-710") {
			t.Error("hospital standards missing")
		}
	})

	t.Run("unknown state omits building code", func(t *testing.T) {
		got := BuildStandardsText(wfmodel.ProjectTypeOffice, "Atlantis")
		if strings.Contains(got, "Bauordnung (") {
			t.Errorf("unexpected state building code in %q", got)
		}
	})
}
