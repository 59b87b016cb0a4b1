package types

import (
	"fmt"

	"github.com/google/uuid"
)

// IssueType classifies a single defect found in an extraction.
type IssueType string

const (
	IssueMissingCriticalField IssueType = "missing_critical_field"
	IssuePlaceholderValue     IssueType = "placeholder_value"
	IssueTooShort             IssueType = "too_short"
	IssueTimestampIncluded    IssueType = "timestamp_included"
	IssueInvalidDateFormat    IssueType = "invalid_date_format"
	IssueMissingTestName      IssueType = "missing_test_name"
	IssueMissingValue         IssueType = "missing_value"
	IssueValueUnitSwap        IssueType = "value_unit_swap"
	IssueRangeAsValue         IssueType = "range_as_value"
	IssueValueInUnit          IssueType = "value_in_unit"
	IssueSymbolUnit           IssueType = "symbol_unit"
	IssueMagnitudeMismatch    IssueType = "magnitude_mismatch"
	IssueMisalignedRow        IssueType = "misaligned_row"
	IssueNeighborCopy         IssueType = "neighbor_copy"
	IssueMalformedPayload     IssueType = "malformed_payload"
)

// ValidationIssue records one defect. RowIndex is nil for issues
// against the personal-info section rather than a table row.
type ValidationIssue struct {
	Type     IssueType `json:"type" yaml:"type"`
	RowIndex *int      `json:"row_index,omitempty" yaml:"row_index,omitempty"`
	Field    string    `json:"field" yaml:"field"`
	Value    string    `json:"value" yaml:"value"`
	Reason   string    `json:"reason" yaml:"reason"`
}

// RowIssue builds an issue tied to a table row.
func RowIssue(t IssueType, row int, field, value, reason string) ValidationIssue {
	idx := row
	return ValidationIssue{Type: t, RowIndex: &idx, Field: field, Value: value, Reason: reason}
}

// ValidationReport aggregates everything found in one extraction
// attempt. Reports are created fresh per attempt and are not reused.
type ValidationReport struct {
	ID              string            `json:"id" yaml:"id"`
	TotalRows       int               `json:"total_rows" yaml:"total_rows"`
	RowsWithValues  int               `json:"rows_with_values" yaml:"rows_with_values"`
	RowsWithRanges  int               `json:"rows_with_ranges" yaml:"rows_with_ranges"`
	EmptyFieldNames int               `json:"empty_field_names" yaml:"empty_field_names"`
	RowsDropped     int               `json:"rows_dropped" yaml:"rows_dropped"`
	MisalignedRows  []ValidationIssue `json:"misaligned_rows" yaml:"misaligned_rows"`
	Issues          []ValidationIssue `json:"issues" yaml:"issues"`
	IsValid         bool              `json:"is_valid" yaml:"is_valid"`
	Reason          string            `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewValidationReport returns an empty report with a fresh ID.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		ID:      uuid.NewString(),
		IsValid: true,
	}
}

// Add appends an issue to the report.
func (r *ValidationReport) Add(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// IssueCount returns the total number of issues, misaligned rows
// included.
func (r *ValidationReport) IssueCount() int {
	return len(r.Issues) + len(r.MisalignedRows)
}

// Summary returns a short human-readable description of the report.
func (r *ValidationReport) Summary() string {
	if r.IsValid {
		return fmt.Sprintf("valid: %d rows, no issues", r.TotalRows)
	}
	return fmt.Sprintf("invalid: %s (%d issues)", r.Reason, r.IssueCount())
}
