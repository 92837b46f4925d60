package node

import (
	"strings"
	"testing"

	"tga-report-ai-api/internal/workflow/model"
)

const validCostJSON = `{
  "kg_410": {"betrag": 85000, "pro_m2": 50, "beschreibung": "Sanitärinstallation"},
  "kg_420": {"betrag": 136000, "pro_m2": 80},
  "kg_430": {"betrag": 153000, "pro_m2": 90},
  "kg_434": {"betrag": 68000, "pro_m2": 40},
  "kg_440": {"betrag": 187000, "pro_m2": 110},
  "kg_470": {"betrag": 34000, "pro_m2": 20},
  "kg_480": {"betrag": 51000, "pro_m2": 30},
  "gesamt_kg_400": {"betrag": 714000, "pro_m2": 420},
  "genauigkeit": "±30%",
  "hinweise": []
}`

func TestParseFreeform(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind model.ContentKind
		wantText string
	}{
		{
			name:     "plain text",
			raw:      "Die Wärmeversorgung erfolgt über Fernwärme.",
			wantKind: model.ContentFreeform,
			wantText: "Die Wärmeversorgung erfolgt über Fernwärme.",
		},
		{
			name:     "code fences stripped",
			raw:      "```markdown\nAbschnitt A.1\n```",
			wantKind: model.ContentFreeform,
			wantText: "Abschnitt A.1",
		},
		{
			name:     "surrounding whitespace trimmed",
			raw:      "\n\n  Inhalt  \n",
			wantKind: model.ContentFreeform,
			wantText: "Inhalt",
		},
		{
			name:     "empty reply fails",
			raw:      "   \n\t",
			wantKind: model.ContentFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw, model.ShapeFreeform)
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if tt.wantKind == model.ContentFreeform && got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestParseCostShape(t *testing.T) {
	got := Parse(validCostJSON, model.ShapeCostBreakdown)
	if got.Kind != model.ContentStructured {
		t.Fatalf("Kind = %s, want structured (reason: %s)", got.Kind, got.FailReason)
	}
	if got.SchemaID != model.CostSchemaID {
		t.Errorf("SchemaID = %q, want %q", got.SchemaID, model.CostSchemaID)
	}
	breakdown, ok := got.Structured.(*model.CostBreakdown)
	if !ok {
		t.Fatalf("Structured is %T, want *model.CostBreakdown", got.Structured)
	}
	if breakdown.KG440.Amount != 187000 {
		t.Errorf("KG440.Amount = %v, want 187000", breakdown.KG440.Amount)
	}
	if breakdown.Total.Amount != 714000 {
		t.Errorf("Total.Amount = %v, want 714000", breakdown.Total.Amount)
	}
}

func TestParseCostBreakdown(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name: "json inside prose and fences",
			raw:  "Hier ist die Kostenschätzung:\n```json\n" + validCostJSON + "\n```\nWeitere Hinweise folgen.",
		},
		{
			name: "extra unknown keys tolerated",
			raw:  strings.Replace(validCostJSON, `"genauigkeit"`, `"waehrung": "EUR", "genauigkeit"`, 1),
		},
		{
			name:    "no json at all",
			raw:     "Leider kann ich keine Kostenschätzung erstellen.",
			wantErr: "no json",
		},
		{
			name:    "missing group",
			raw:     strings.Replace(validCostJSON, `"kg_434": {"betrag": 68000, "pro_m2": 40},`, "", 1),
			wantErr: "missing groups: kg_434",
		},
		{
			name:    "negative amount",
			raw:     strings.Replace(validCostJSON, `"betrag": 51000`, `"betrag": -51000`, 1),
			wantErr: "negative amount",
		},
		{
			name:    "string typed numbers rejected",
			raw:     strings.Replace(validCostJSON, `"betrag": 85000`, `"betrag": "85000"`, 1),
			wantErr: "does not match schema",
		},
		{
			name:    "missing total",
			raw:     strings.Replace(validCostJSON, `"gesamt_kg_400": {"betrag": 714000, "pro_m2": 420},`, `"gesamt_kg_400": {"betrag": 0, "pro_m2": 0},`, 1),
			wantErr: "gesamt_kg_400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := ParseCostBreakdown(tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if breakdown.SumGroups() != 714000 {
					t.Errorf("SumGroups = %v, want 714000", breakdown.SumGroups())
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "prefix and suffix noise",
			in:   `Gerne, hier das Ergebnis: {"a": {"b": 2}} Damit ist alles erledigt.`,
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "array value",
			in:   `[1, 2, 3] und mehr`,
			want: `[1, 2, 3]`,
		},
		{
			name: "nested braces in strings",
			in:   `{"text": "ein { in einem String"} rest`,
			want: `{"text": "ein { in einem String"}`,
		},
		{
			name: "truncated object",
			in:   `{"a": 1`,
			want: "",
		},
		{
			name: "no json",
			in:   "nur Text",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	want := "{\"a\": 1}"
	if got := StripCodeFences(in); got != want {
		t.Errorf("StripCodeFences = %q, want %q", got, want)
	}

	plain := "kein Zaun"
	if got := StripCodeFences(plain); got != plain {
		t.Errorf("StripCodeFences altered text without fences: %q", got)
	}
}
