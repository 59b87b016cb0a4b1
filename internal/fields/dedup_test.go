package fields

import (
	"testing"

	"github.com/medextract/labcheck/internal/types"
)

func field(name, category, value, rangeText string) types.MedicalField {
	return types.MedicalField{
		FieldName:   name,
		Category:    category,
		FieldValue:  value,
		NormalRange: rangeText,
	}
}

func TestDeduplicate(t *testing.T) {
	t.Run("fuller range wins", func(t *testing.T) {
		rows := []types.MedicalField{
			field("Hemoglobin", "CBC", "13.5", ""),
			field("Hemoglobin", "CBC", "13.5", "(12-16)"),
		}
		out := Deduplicate(rows)
		if len(out) != 1 {
			t.Fatalf("expected 1 row, got %d", len(out))
		}
		if out[0].NormalRange != "(12-16)" {
			t.Errorf("range = %q, want (12-16)", out[0].NormalRange)
		}
	})

	t.Run("different values both kept", func(t *testing.T) {
		rows := []types.MedicalField{
			field("Glucose", "Chemistry", "95", ""),
			field("Glucose", "Chemistry", "180", ""),
		}
		out := Deduplicate(rows)
		if len(out) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(out))
		}
	})

	t.Run("key is case and punctuation insensitive", func(t *testing.T) {
		rows := []types.MedicalField{
			field("Hemoglobin (Hb)", "CBC", "13.5", ""),
			field("HEMOGLOBIN HB", "cbc", "13.5", "(12-16)"),
		}
		if out := Deduplicate(rows); len(out) != 1 {
			t.Fatalf("expected 1 row, got %d", len(out))
		}
	})

	t.Run("different category is a different test", func(t *testing.T) {
		rows := []types.MedicalField{
			field("Specific Gravity", "Urine", "1.01", ""),
			field("Specific Gravity", "Fluid", "1.01", ""),
		}
		if out := Deduplicate(rows); len(out) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(out))
		}
	})

	t.Run("section header dropped", func(t *testing.T) {
		rows := []types.MedicalField{
			field("CBC", "CBC", "", ""),
			field("Hemoglobin", "CBC", "13.5", ""),
		}
		out := Deduplicate(rows)
		if len(out) != 1 {
			t.Fatalf("expected 1 row, got %d", len(out))
		}
		if out[0].FieldName != "Hemoglobin" {
			t.Errorf("kept %q", out[0].FieldName)
		}
	})

	t.Run("header with value survives", func(t *testing.T) {
		rows := []types.MedicalField{field("CBC", "CBC", "see below", "")}
		if out := Deduplicate(rows); len(out) != 1 {
			t.Fatalf("expected 1 row, got %d", len(out))
		}
	})

	t.Run("order preserved", func(t *testing.T) {
		rows := []types.MedicalField{
			field("A", "x", "1", ""),
			field("B", "x", "2", ""),
			field("A", "x", "1", "(0-2)"),
			field("C", "x", "3", ""),
		}
		out := Deduplicate(rows)
		if len(out) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(out))
		}
		names := []string{out[0].FieldName, out[1].FieldName, out[2].FieldName}
		if names[0] != "A" || names[1] != "B" || names[2] != "C" {
			t.Errorf("order = %v", names)
		}
		if out[0].NormalRange != "(0-2)" {
			t.Errorf("merged range = %q", out[0].NormalRange)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if out := Deduplicate(nil); out != nil {
			t.Errorf("expected nil, got %v", out)
		}
	})
}
