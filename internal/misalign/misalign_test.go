package misalign

import (
	"strings"
	"testing"

	"github.com/medextract/labcheck/internal/types"
)

func row(name, value, unit, rangeText string) types.MedicalField {
	return types.MedicalField{
		FieldName:   name,
		FieldValue:  value,
		FieldUnit:   unit,
		NormalRange: rangeText,
	}
}

func TestDetect(t *testing.T) {
	t.Run("clean rows produce no issues", func(t *testing.T) {
		rows := []types.MedicalField{
			row("Hemoglobin", "13.5", "g/dL", "(12-16)"),
			row("WBC", "7.2", "K/uL", "(4-11)"),
		}
		if issues := Detect(rows); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})

	t.Run("value contains unit symbol", func(t *testing.T) {
		rows := []types.MedicalField{row("Neutrophils", "109%", "mg/dL", "")}
		issues := Detect(rows)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %d", len(issues))
		}
		if *issues[0].RowIndex != 0 {
			t.Errorf("row index = %d, want 0", *issues[0].RowIndex)
		}
		if !strings.Contains(issues[0].Reason, "unit symbol") {
			t.Errorf("reason = %q", issues[0].Reason)
		}
	})

	t.Run("value looks like a range", func(t *testing.T) {
		rows := []types.MedicalField{row("Glucose", "(70-110)", "mg/dL", "")}
		issues := Detect(rows)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
		}
		if !strings.Contains(issues[0].Reason, "looks like a range") {
			t.Errorf("reason = %q", issues[0].Reason)
		}
	})

	t.Run("dot-separated bracket value", func(t *testing.T) {
		rows := []types.MedicalField{row("Glucose", "(4.5)", "mg/dL", "")}
		issues := Detect(rows)
		if len(issues) != 1 || !strings.Contains(issues[0].Reason, "looks like a range") {
			t.Fatalf("got %v", issues)
		}
	})

	t.Run("numeric unit", func(t *testing.T) {
		rows := []types.MedicalField{row("RBC", "4.8", "123", "(4-5.5)")}
		issues := Detect(rows)
		if len(issues) != 1 || !strings.Contains(issues[0].Reason, "numeric") {
			t.Fatalf("got %v", issues)
		}
	})

	t.Run("range-shaped unit", func(t *testing.T) {
		rows := []types.MedicalField{row("RBC", "4.8", "(4-5.5)", "")}
		issues := Detect(rows)
		if len(issues) != 1 || !strings.Contains(issues[0].Reason, "range (likely swapped)") {
			t.Fatalf("got %v", issues)
		}
	})

	t.Run("dot-separated bracket unit", func(t *testing.T) {
		rows := []types.MedicalField{row("RBC", "4.8", "(4.5)", "")}
		issues := Detect(rows)
		if len(issues) != 1 || !strings.Contains(issues[0].Reason, "range (likely swapped)") {
			t.Fatalf("got %v", issues)
		}
	})

	t.Run("bare number range", func(t *testing.T) {
		rows := []types.MedicalField{row("Glucose", "95", "mg/dL", "110")}
		issues := Detect(rows)
		if len(issues) != 1 || !strings.Contains(issues[0].Reason, "single number") {
			t.Fatalf("got %v", issues)
		}
	})

	t.Run("multi-dot range artifact", func(t *testing.T) {
		rows := []types.MedicalField{row("Glucose", "95", "mg/dL", "4.5.6")}
		issues := Detect(rows)
		if len(issues) != 1 || !strings.Contains(issues[0].Reason, "single number") {
			t.Fatalf("got %v", issues)
		}
	})

	t.Run("one row can trigger several heuristics", func(t *testing.T) {
		rows := []types.MedicalField{row("Mystery", "(4-11) K/uL", "99", "42")}
		issues := Detect(rows)
		if len(issues) < 3 {
			t.Fatalf("expected at least 3 issues, got %d: %v", len(issues), issues)
		}
	})

	t.Run("input not mutated", func(t *testing.T) {
		rows := []types.MedicalField{row("Neutrophils", "109%", "mg/dL", "")}
		Detect(rows)
		if rows[0].FieldValue != "109%" || rows[0].FieldUnit != "mg/dL" {
			t.Error("Detect mutated its input")
		}
	})
}

func TestDetectNeighborCopies(t *testing.T) {
	t.Run("repeated value flagged", func(t *testing.T) {
		rows := []types.MedicalField{
			row("RBC", "4.8", "", ""),
			row("WBC", "7.2", "", ""),
			row("Platelets", "4.8", "", ""),
		}
		issues := DetectNeighborCopies(rows, 3)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %d", len(issues))
		}
		if *issues[0].RowIndex != 2 {
			t.Errorf("row index = %d, want 2", *issues[0].RowIndex)
		}
		if issues[0].Type != types.IssueNeighborCopy {
			t.Errorf("type = %s", issues[0].Type)
		}
	})

	t.Run("repeat outside window ignored", func(t *testing.T) {
		rows := []types.MedicalField{
			row("A", "4.8", "", ""),
			row("B", "1.0", "", ""),
			row("C", "2.0", "", ""),
			row("D", "3.0", "", ""),
			row("E", "4.8", "", ""),
		}
		if issues := DetectNeighborCopies(rows, 3); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})

	t.Run("distinct values pass", func(t *testing.T) {
		rows := []types.MedicalField{
			row("A", "4.8", "", ""),
			row("B", "4.9", "", ""),
		}
		if issues := DetectNeighborCopies(rows, 3); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})

	t.Run("zero window disables detection", func(t *testing.T) {
		rows := []types.MedicalField{
			row("A", "4.8", "", ""),
			row("B", "4.8", "", ""),
		}
		if issues := DetectNeighborCopies(rows, 0); issues != nil {
			t.Errorf("expected nil, got %v", issues)
		}
	})
}
