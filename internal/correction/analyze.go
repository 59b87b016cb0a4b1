// Package correction inspects a validated extraction for the defect
// patterns that warrant a re-extraction pass and renders the
// corrective prompt the caller can feed back to the model. It never
// calls a model itself.
package correction

import (
	"fmt"
	"math"
	"strings"

	"github.com/medextract/labcheck/internal/config"
	"github.com/medextract/labcheck/internal/fields"
	"github.com/medextract/labcheck/internal/misalign"
	"github.com/medextract/labcheck/internal/ranges"
	"github.com/medextract/labcheck/internal/types"
)

// Label strings that show up where a real name should be when the
// model echoed a form caption.
var (
	patientPlaceholders = map[string]struct{}{
		"patient": {}, "name": {}, "n/a": {}, "unknown": {},
	}
	doctorPlaceholders = map[string]struct{}{
		"doctor": {}, "dr": {}, "physician": {}, "signature": {},
	}
)

// Analyzer scans extraction records for defects. Thresholds come from
// the pipeline config.
type Analyzer struct {
	cfg config.Config
}

// New returns an Analyzer using the given thresholds.
func New(cfg config.Config) Analyzer {
	return Analyzer{cfg: cfg}
}

// Analyze produces a fresh ValidationReport for the record. A field
// can yield several issues; each concrete defect is reported once.
// The record is never mutated.
func (a Analyzer) Analyze(rec types.ExtractionRecord) *types.ValidationReport {
	report := types.NewValidationReport()

	a.checkPersonalInfo(rec, report)
	a.checkRows(rec.MedicalData, report)

	report.TotalRows = len(rec.MedicalData)
	for _, row := range rec.MedicalData {
		if strings.TrimSpace(row.FieldValue) != "" {
			report.RowsWithValues++
		}
		if strings.TrimSpace(row.NormalRange) != "" {
			report.RowsWithRanges++
		}
		if strings.TrimSpace(row.FieldName) == "" {
			report.EmptyFieldNames++
		}
	}

	report.MisalignedRows = misalign.Detect(rec.MedicalData)
	report.Issues = append(report.Issues,
		misalign.DetectNeighborCopies(rec.MedicalData, a.cfg.NeighborWindow)...)

	switch {
	case report.TotalRows < a.cfg.MinRowCount:
		report.IsValid = false
		report.Reason = fmt.Sprintf("fewer than %d rows extracted", a.cfg.MinRowCount)
	case len(report.MisalignedRows) > 0:
		report.IsValid = false
		report.Reason = fmt.Sprintf("%d misaligned rows detected", len(report.MisalignedRows))
	case len(report.Issues) > 0:
		report.IsValid = false
		report.Reason = fmt.Sprintf("%d extraction issues found", len(report.Issues))
	}

	return report
}

func (a Analyzer) checkPersonalInfo(rec types.ExtractionRecord, report *types.ValidationReport) {
	name := strings.TrimSpace(rec.PatientName)
	switch {
	case name == "":
		report.Add(types.ValidationIssue{
			Type: types.IssueMissingCriticalField, Field: "patient_name",
			Reason: "patient name is empty - should have been found in the header",
		})
	case isPlaceholderName(name, patientPlaceholders):
		report.Add(types.ValidationIssue{
			Type: types.IssuePlaceholderValue, Field: "patient_name", Value: name,
			Reason: fmt.Sprintf("patient name %q is a label, not an actual name", name),
		})
	case len([]rune(name)) < 3:
		report.Add(types.ValidationIssue{
			Type: types.IssueTooShort, Field: "patient_name", Value: name,
			Reason: fmt.Sprintf("patient name %q too short - likely incorrect extraction", name),
		})
	}

	doctor := strings.TrimSpace(rec.DoctorNames)
	switch {
	case doctor == "":
		report.Add(types.ValidationIssue{
			Type: types.IssueMissingCriticalField, Field: "doctor_names",
			Reason: "doctor name is empty - search header, signature blocks, and footer",
		})
	case isPlaceholderName(doctor, doctorPlaceholders):
		report.Add(types.ValidationIssue{
			Type: types.IssuePlaceholderValue, Field: "doctor_names", Value: doctor,
			Reason: fmt.Sprintf("doctor field %q is a label, not an actual name", doctor),
		})
	case len([]rune(doctor)) < 3:
		report.Add(types.ValidationIssue{
			Type: types.IssueTooShort, Field: "doctor_names", Value: doctor,
			Reason: fmt.Sprintf("doctor name %q too short - likely incorrect extraction", doctor),
		})
	}

	date := strings.TrimSpace(rec.ReportDate)
	switch {
	case date == "":
		report.Add(types.ValidationIssue{
			Type: types.IssueMissingCriticalField, Field: "report_date",
			Reason: "report date is empty - required field",
		})
	case strings.Contains(date, " ") && strings.Contains(date, ":"):
		report.Add(types.ValidationIssue{
			Type: types.IssueTimestampIncluded, Field: "report_date", Value: date,
			Reason: fmt.Sprintf("report date %q includes a timestamp - should be YYYY-MM-DD only", date),
		})
	case !strings.Contains(date, "19") && !strings.Contains(date, "20"):
		report.Add(types.ValidationIssue{
			Type: types.IssueInvalidDateFormat, Field: "report_date", Value: date,
			Reason: fmt.Sprintf("report date %q is not in YYYY-MM-DD format", date),
		})
	}
}

func (a Analyzer) checkRows(rows []types.MedicalField, report *types.ValidationReport) {
	for idx, row := range rows {
		name := strings.TrimSpace(row.FieldName)
		value := strings.TrimSpace(row.FieldValue)
		unit := strings.TrimSpace(row.FieldUnit)
		rangeText := strings.TrimSpace(row.NormalRange)

		if name == "" {
			report.Add(types.RowIssue(types.IssueMissingTestName, idx, "field_name", name,
				"test name is empty - each row must have a test name"))
		}
		if value == "" {
			report.Add(types.RowIssue(types.IssueMissingValue, idx, "field_value", value,
				"test value is empty - rows without a result should not be extracted"))
		}
		if fields.IsPlaceholder(row.FieldValue) {
			report.Add(types.RowIssue(types.IssuePlaceholderValue, idx, "field_value", row.FieldValue,
				fmt.Sprintf("value %q is a placeholder marker, not a result", row.FieldValue)))
		}

		if strings.Contains(value, "%") && unit != "" && unit != "%" {
			report.Add(types.RowIssue(types.IssueValueUnitSwap, idx, "field_value", value,
				fmt.Sprintf("value contains %% while unit is %q - possible column misalignment", unit)))
		}
		if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") && rangeText == "" {
			report.Add(types.RowIssue(types.IssueRangeAsValue, idx, "field_value", value,
				"value is bracket-shaped with an empty range - column misalignment"))
		}
		if unit != "" && strings.ContainsAny(unit, "0123456789") {
			report.Add(types.RowIssue(types.IssueValueInUnit, idx, "field_unit", unit,
				fmt.Sprintf("unit %q contains digits - value/unit swap", unit)))
		}
		if unit != "" && isSymbolOnly(unit) {
			report.Add(types.RowIssue(types.IssueSymbolUnit, idx, "field_unit", unit,
				fmt.Sprintf("unit %q is symbols only, not a unit", unit)))
		}

		a.checkMagnitude(idx, value, rangeText, report)
	}
}

// checkMagnitude flags a value that is an order of magnitude away from
// its range bounds; such pairs come from a range read off a different
// row, not from pathology.
func (a Analyzer) checkMagnitude(idx int, value, rangeText string, report *types.ValidationReport) {
	if value == "" || rangeText == "" {
		return
	}
	v, ok := ranges.Number(value)
	if !ok || v <= 0 {
		return
	}

	// Only flag when every parsed segment is implausible; a value that
	// fits any segment (or sits within a factor of the bounds) is fine.
	// The reported ratio is the one farthest from 1 across segments.
	var worst, worstDistance float64
	flagged := false
	for _, seg := range ranges.ParseSegments(rangeText) {
		if seg.Contains(v) {
			return
		}
		bound := seg.Max
		if math.IsInf(bound, 1) {
			bound = seg.Min
		}
		if bound <= 0 || math.IsInf(bound, 0) {
			continue
		}
		ratio := v / bound
		if ratio >= a.cfg.MagnitudeRatioLow && ratio <= a.cfg.MagnitudeRatioHigh {
			return
		}
		distance := ratio
		if distance < 1 {
			distance = 1 / distance
		}
		if distance > worstDistance {
			worstDistance = distance
			worst = ratio
		}
		flagged = true
	}
	if flagged {
		report.Add(types.RowIssue(types.IssueMagnitudeMismatch, idx, "normal_range", rangeText,
			fmt.Sprintf("value %s is %.2fx the range bound - range likely from another row", value, worst)))
	}
}

func isPlaceholderName(name string, set map[string]struct{}) bool {
	_, ok := set[strings.ToLower(name)]
	return ok
}

// isSymbolOnly reports whether s has no letters or digits at all.
func isSymbolOnly(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			return false
		}
	}
	return s != ""
}
