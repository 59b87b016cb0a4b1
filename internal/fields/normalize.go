// Package fields cleans individual lab-table rows and merges duplicate
// entries across pages. Cleaning is conservative: placeholder tokens
// become empty strings, numeric precision is preserved exactly as
// printed, and nothing is ever invented to fill a gap.
package fields

import (
	"regexp"
	"strings"

	"github.com/medextract/labcheck/internal/normalcy"
	"github.com/medextract/labcheck/internal/types"
)

// placeholders are tokens the model emits for blank cells. They are
// canonicalized to "" so downstream consumers never see the literal
// marker. The Arabic entries mean "not available" / "not present".
var placeholders = map[string]struct{}{
	"-": {}, "--": {}, "—": {}, "*": {}, "**": {}, "***": {}, "****": {},
	"n/a": {}, "na": {}, "n.a": {}, "nil": {}, "none": {}, "null": {},
	"nul": {}, "unknown": {}, "not available": {},
	".": {}, "..": {}, "...": {}, "(*)": {}, "(-)": {},
	"غير متوفر": {}, "غير موجود": {},
}

// symbolUnits are unit cells containing only markup, not a unit.
var symbolUnits = map[string]struct{}{
	"*": {}, "**": {}, "***": {}, "****": {}, "-": {}, "—": {},
	".": {}, "..": {}, "(-)": {},
}

var (
	numericToken     = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	trailingLeftover = regexp.MustCompile(`\s*([,-])\s*$`)
)

// IsPlaceholder reports whether s is an empty-cell marker.
func IsPlaceholder(s string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// NormalizeValue canonicalizes a value cell. Placeholders become "";
// numeric values are reduced to their numeric token with the printed
// precision intact and any leading comparator (<, >) kept; everything
// else passes through trimmed.
func NormalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || IsPlaceholder(value) {
		return ""
	}

	prefix := ""
	body := value
	if strings.HasPrefix(body, "<") || strings.HasPrefix(body, ">") {
		prefix = body[:1]
		body = strings.TrimSpace(body[1:])
	}

	if tok := numericToken.FindString(body); tok != "" {
		return prefix + tok
	}
	return value
}

// NormalizeRange cleans a range cell. Placeholders become ""; a unit
// token duplicated at the end of the range (the model re-reading the
// unit column into the range) is collapsed. A range that is otherwise
// present is never reformatted.
func NormalizeRange(rangeText, unit string) string {
	rangeText = strings.TrimSpace(rangeText)
	if rangeText == "" || IsPlaceholder(rangeText) {
		return ""
	}

	// "mg/dl mg/dl" -> "mg/dl"
	if parts := strings.Fields(rangeText); len(parts) >= 2 && parts[len(parts)-1] == parts[len(parts)-2] {
		rangeText = strings.Join(parts[:len(parts)-1], " ")
	}

	// Drop a trailing unit token that duplicates the unit column. The
	// unit must stand alone as the last whitespace-separated token;
	// a raw suffix match would eat into the range itself when the unit
	// cell holds a stray number ("3.5-5.5" with unit "5").
	if parts := strings.Fields(rangeText); unit != "" && len(parts) >= 2 && parts[len(parts)-1] == unit {
		rangeText = strings.TrimSpace(strings.TrimSuffix(rangeText, unit))
		rangeText = trailingLeftover.ReplaceAllString(rangeText, "")
	}

	return strings.TrimSpace(rangeText)
}

// NormalizeUnit clears symbol-only unit cells.
func NormalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if _, ok := symbolUnits[unit]; ok {
		return ""
	}
	return unit
}

// Normalize returns a cleaned copy of one table row. IsNormal is
// always recomputed from the cleaned value and range; whatever the
// model claimed is discarded.
func Normalize(field types.MedicalField) types.MedicalField {
	out := field
	out.FieldName = strings.TrimSpace(field.FieldName)
	out.FieldUnit = NormalizeUnit(field.FieldUnit)
	out.FieldValue = NormalizeValue(field.FieldValue)
	out.NormalRange = NormalizeRange(field.NormalRange, out.FieldUnit)
	out.Category = strings.TrimSpace(field.Category)
	out.Notes = strings.TrimSpace(field.Notes)
	if out.FieldType == "" {
		out.FieldType = "measurement"
	}
	out.IsNormal = normalcy.Evaluate(out.FieldValue, out.NormalRange)
	return out
}

// NormalizeAll normalizes every row, preserving order.
func NormalizeAll(fields []types.MedicalField) []types.MedicalField {
	out := make([]types.MedicalField, len(fields))
	for i, f := range fields {
		out[i] = Normalize(f)
	}
	return out
}
