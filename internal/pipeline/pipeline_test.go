package pipeline

import (
	"io"
	"log/slog"
	"testing"

	"github.com/medextract/labcheck/internal/config"
	"github.com/medextract/labcheck/internal/personal"
	"github.com/medextract/labcheck/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const samplePayload = `{
	"patient_name": "John Doe",
	"patient_age": "28",
	"patient_dob": "01/05/1975",
	"patient_gender": "ذكر",
	"report_date": "2026-01-23 20:50:51.129476",
	"doctor_names": "Dr. Ahmed Hassan",
	"medical_data": [
		{"field_name": "WBC", "field_value": "7.2", "field_unit": "K/uL", "normal_range": "(4.5-11)"},
		{"field_name": "wbc", "field_value": "7.2", "field_unit": "", "normal_range": ""},
		{"field_name": "Hemoglobin", "field_value": "13.5", "field_unit": "g/dL", "normal_range": "(12-16)"},
		{"field_name": "Platelets", "field_value": "250", "field_unit": "K/uL", "normal_range": "(150-400)"},
		{"field_name": "Glucose", "field_value": "109", "field_unit": "mg/dL", "normal_range": "(70-110)", "is_normal": false},
		{"field_name": "Creatinine", "field_value": "1.4", "field_unit": "mg/dL", "normal_range": "(0.6-1.2)"}
	]
}`

func TestProcessJSON(t *testing.T) {
	p := New(config.DefaultConfig(), quietLogger())

	rec, report, err := p.ProcessJSON(samplePayload)
	if err != nil {
		t.Fatalf("ProcessJSON() error = %v", err)
	}

	if rec.PatientGender != "Male" {
		t.Errorf("gender = %q, want Male", rec.PatientGender)
	}
	if rec.PatientDob != "1975-05-01" {
		t.Errorf("dob = %q, want 1975-05-01", rec.PatientDob)
	}
	if rec.ReportDate != "2026-01-23" {
		t.Errorf("report date = %q, want 2026-01-23", rec.ReportDate)
	}
	// The claimed age of 28 contradicts the DOB far outside tolerance,
	// so the DOB-derived age wins.
	if want := personal.CalculateAge("1975-05-01"); rec.PatientAge != want {
		t.Errorf("age = %q, want %q", rec.PatientAge, want)
	}
	if rec.DoctorNames != "Ahmed Hassan" {
		t.Errorf("doctor names = %q", rec.DoctorNames)
	}

	if len(rec.MedicalData) != 5 {
		t.Fatalf("expected 5 rows after dedup, got %d", len(rec.MedicalData))
	}
	if report.RowsDropped != 1 {
		t.Errorf("rows dropped = %d, want 1", report.RowsDropped)
	}
	// The merged WBC row keeps the fuller range from its duplicate.
	if rec.MedicalData[0].NormalRange != "(4.5-11)" {
		t.Errorf("merged WBC range = %q", rec.MedicalData[0].NormalRange)
	}

	// Normalcy is recomputed row by row; the model's is_normal claim on
	// the Glucose row is discarded.
	glucose := rec.MedicalData[3]
	if glucose.IsNormal == nil || !*glucose.IsNormal {
		t.Error("glucose 109 in (70-110) should be normal")
	}
	creatinine := rec.MedicalData[4]
	if creatinine.IsNormal == nil || *creatinine.IsNormal {
		t.Error("creatinine 1.4 in (0.6-1.2) should be abnormal")
	}

	if !report.IsValid {
		t.Errorf("expected valid report, got reason %q with issues %+v", report.Reason, report.Issues)
	}
}

func TestProcessJSONDecodeFailure(t *testing.T) {
	p := New(config.DefaultConfig(), quietLogger())
	if _, _, err := p.ProcessJSON("no json here"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestProcessJSONMalformedPayloadAbsorbed(t *testing.T) {
	p := New(config.DefaultConfig(), quietLogger())

	rec, report, err := p.ProcessJSON(`{"patient_name": "John Doe", "medical_data": "oops"}`)
	if err != nil {
		t.Fatalf("malformed payload must not error, got %v", err)
	}
	if rec.PatientName != "John Doe" {
		t.Errorf("patient name = %q", rec.PatientName)
	}
	if report.IsValid {
		t.Error("a mis-shaped payload should invalidate the report")
	}

	found := false
	for _, issue := range report.Issues {
		if issue.Type == types.IssueMalformedPayload {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a malformed_payload issue, got %+v", report.Issues)
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	p := New(config.DefaultConfig(), quietLogger())
	raw := types.RawExtraction{
		PatientGender: "male",
		MedicalData: []types.RawField{
			{FieldName: "WBC", FieldValue: "7.2 ", FieldUnit: "K/uL"},
		},
	}

	p.Process(raw)
	if raw.MedicalData[0].FieldValue != "7.2 " {
		t.Error("input row was mutated")
	}
	if raw.PatientGender != "male" {
		t.Error("input gender was mutated")
	}
}

func TestMergePages(t *testing.T) {
	merged := MergePages([]types.ExtractionRecord{
		{
			PatientName: "John Doe",
			ReportDate:  "2026-01-23",
			MedicalData: []types.MedicalField{
				{FieldName: "WBC", FieldValue: "7.2", NormalRange: "(4.5-11)"},
				{FieldName: "Glucose", FieldValue: "109"},
			},
		},
		{
			PatientGender: "Male",
			DoctorNames:   "Ahmed Hassan",
			MedicalData: []types.MedicalField{
				{FieldName: "Glucose", FieldValue: "109", NormalRange: "(70-110)"},
				{FieldName: "Creatinine", FieldValue: "1.4", NormalRange: "(0.6-1.2)"},
			},
		},
	})

	if merged.PatientName != "John Doe" || merged.PatientGender != "Male" {
		t.Errorf("personal fields not merged: %+v", merged)
	}
	if merged.DoctorNames != "Ahmed Hassan" {
		t.Errorf("doctor names = %q", merged.DoctorNames)
	}
	if len(merged.MedicalData) != 3 {
		t.Fatalf("expected 3 rows after cross-page dedup, got %d", len(merged.MedicalData))
	}
	// The Glucose duplicate from page two contributes its range.
	if merged.MedicalData[1].NormalRange != "(70-110)" {
		t.Errorf("merged glucose range = %q", merged.MedicalData[1].NormalRange)
	}
}

func TestMergePagesFirstNonEmptyWins(t *testing.T) {
	merged := MergePages([]types.ExtractionRecord{
		{PatientName: "John Doe"},
		{PatientName: "J. Doe", PatientAge: "50"},
	})
	if merged.PatientName != "John Doe" {
		t.Errorf("patient name = %q, want first page's value", merged.PatientName)
	}
	if merged.PatientAge != "50" {
		t.Errorf("patient age = %q", merged.PatientAge)
	}
}

func TestMergePagesEmpty(t *testing.T) {
	merged := MergePages(nil)
	if merged.PatientName != "" || len(merged.MedicalData) != 0 {
		t.Errorf("expected zero record, got %+v", merged)
	}
}
