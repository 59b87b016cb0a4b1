// Package types defines the data model shared across the validation
// pipeline: the extraction record produced by the vision model, the
// per-row medical field, and the validation report returned to callers.
package types

// ExtractionRecord is a validated extraction for one report page.
// All fields are plain strings; a field the validators could not
// establish is the empty string, never a placeholder token.
type ExtractionRecord struct {
	PatientName   string         `json:"patient_name" yaml:"patient_name"`
	PatientAge    string         `json:"patient_age" yaml:"patient_age"`
	PatientDob    string         `json:"patient_dob" yaml:"patient_dob"`
	PatientGender string         `json:"patient_gender" yaml:"patient_gender"`
	ReportDate    string         `json:"report_date" yaml:"report_date"`
	DoctorNames   string         `json:"doctor_names" yaml:"doctor_names"`
	MedicalData   []MedicalField `json:"medical_data" yaml:"medical_data"`
}

// MedicalField is one row of an extracted lab table.
//
// IsNormal is three-valued: nil means the row carries no numeric value
// or no usable reference range, so normalcy cannot be determined. It is
// always recomputed by the pipeline; the model's own guess is discarded.
type MedicalField struct {
	FieldName   string `json:"field_name" yaml:"field_name"`
	FieldValue  string `json:"field_value" yaml:"field_value"`
	FieldUnit   string `json:"field_unit" yaml:"field_unit"`
	NormalRange string `json:"normal_range" yaml:"normal_range"`
	IsNormal    *bool  `json:"is_normal" yaml:"is_normal"`
	FieldType   string `json:"field_type" yaml:"field_type"`
	Category    string `json:"category" yaml:"category"`
	Notes       string `json:"notes" yaml:"notes"`
}

// RawExtraction is the loosely-typed payload as it arrives from the
// model. Keys may be missing, null, or carry the wrong JSON type; the
// schema decoder absorbs all of that and produces one of these with
// every field present and string-coerced.
type RawExtraction struct {
	PatientName   string     `json:"patient_name"`
	PatientAge    string     `json:"patient_age"`
	PatientDob    string     `json:"patient_dob"`
	PatientGender string     `json:"patient_gender"`
	ReportDate    string     `json:"report_date"`
	DoctorNames   string     `json:"doctor_names"`
	MedicalData   []RawField `json:"medical_data"`

	// SchemaViolation carries the shape error when the payload deviated
	// from the extraction schema. The affected members have already been
	// absorbed with defaults; this is set so the deviation still shows
	// up on the validation report.
	SchemaViolation string `json:"-"`
}

// RawField mirrors MedicalField before validation.
type RawField struct {
	FieldName   string `json:"field_name"`
	FieldValue  string `json:"field_value"`
	FieldUnit   string `json:"field_unit"`
	NormalRange string `json:"normal_range"`
	IsNormal    *bool  `json:"is_normal"`
	FieldType   string `json:"field_type"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
}

// Field converts a raw row into a MedicalField. IsNormal is
// deliberately not carried over.
func (r RawField) Field() MedicalField {
	return MedicalField{
		FieldName:   r.FieldName,
		FieldValue:  r.FieldValue,
		FieldUnit:   r.FieldUnit,
		NormalRange: r.NormalRange,
		FieldType:   r.FieldType,
		Category:    r.Category,
		Notes:       r.Notes,
	}
}

// BoolPtr returns a pointer to b. Convenience for building expected
// values in tests and for setting MedicalField.IsNormal.
func BoolPtr(b bool) *bool { return &b }
