// Package misalign scans extracted table rows for signs that a value,
// unit, or range was read from the wrong row or column. Detection is
// advisory only: the detector never repairs a row, because guessing a
// fix risks silently injecting wrong medical data. Suspect rows are
// surfaced for re-extraction instead.
package misalign

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/medextract/labcheck/internal/ranges"
	"github.com/medextract/labcheck/internal/types"
)

//go:embed assets/units.yaml
var unitsYAML []byte

var unitTokens []string

func init() {
	var doc struct {
		UnitTokens []string `yaml:"unit_tokens"`
	}
	if err := yaml.Unmarshal(unitsYAML, &doc); err != nil {
		panic("misalign: bad embedded unit table: " + err.Error())
	}
	unitTokens = doc.UnitTokens
}

var (
	// bracketRange matches a parenthesized dash- or dot-separated
	// numeric shape like "(4.5-11)" or "(4.5)" appearing where a
	// single value or unit should be.
	bracketRange = regexp.MustCompile(`^\(\d+([-.]\d+)+\)$`)

	digitsOnly = regexp.MustCompile(`^\d+$`)

	// bareNumber matches digits and dots with no dash, which is not a
	// range no matter what column it sits in. Multi-dot OCR artifacts
	// like "4.5.6" count.
	bareNumber = regexp.MustCompile(`^\.*\d[\d.]*$`)
)

// Detect checks every row for misalignment artifacts and returns one
// issue per triggered heuristic; a single row can contribute several.
// The input is never mutated.
func Detect(rows []types.MedicalField) []types.ValidationIssue {
	var issues []types.ValidationIssue

	for idx, row := range rows {
		value := strings.TrimSpace(row.FieldValue)
		unit := strings.TrimSpace(row.FieldUnit)
		rangeText := strings.TrimSpace(row.NormalRange)

		if value != "" {
			for _, token := range unitTokens {
				if strings.Contains(value, token) {
					issues = append(issues, types.RowIssue(
						types.IssueMisalignedRow, idx, "field_value", value,
						fmt.Sprintf("field_value contains unit symbol %q", token)))
					break
				}
			}
			if bracketRange.MatchString(value) {
				issues = append(issues, types.RowIssue(
					types.IssueMisalignedRow, idx, "field_value", value,
					"field_value looks like a range"))
			}
		}

		if unit != "" {
			if digitsOnly.MatchString(unit) {
				issues = append(issues, types.RowIssue(
					types.IssueMisalignedRow, idx, "field_unit", unit,
					"field_unit is numeric (likely swapped)"))
			} else if bracketRange.MatchString(unit) {
				issues = append(issues, types.RowIssue(
					types.IssueMisalignedRow, idx, "field_unit", unit,
					"field_unit is a range (likely swapped)"))
			}
		}

		if rangeText != "" && !strings.HasPrefix(rangeText, "(") && bareNumber.MatchString(rangeText) {
			issues = append(issues, types.RowIssue(
				types.IssueMisalignedRow, idx, "normal_range", rangeText,
				"normal_range is a single number, not a range"))
		}
	}

	return issues
}

// DetectNeighborCopies flags rows whose numeric value near-exactly
// repeats one of the previous window rows. The model sometimes loses
// row tracking mid-table and re-reads a neighbor's value.
func DetectNeighborCopies(rows []types.MedicalField, window int) []types.ValidationIssue {
	if window <= 0 {
		return nil
	}

	var issues []types.ValidationIssue
	var previous []float64

	for idx, row := range rows {
		value := strings.TrimSpace(row.FieldValue)
		v, ok := ranges.Number(value)
		if !ok {
			continue
		}

		for _, prev := range previous {
			if diff := v - prev; diff < 0.001 && diff > -0.001 {
				issues = append(issues, types.RowIssue(
					types.IssueNeighborCopy, idx, "field_value", value,
					fmt.Sprintf("value %s repeats a value from the previous %d rows", value, window)))
				break
			}
		}

		previous = append(previous, v)
		if len(previous) > window {
			previous = previous[1:]
		}
	}

	return issues
}
