package fields

import (
	"regexp"
	"strings"

	"github.com/medextract/labcheck/internal/types"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// dedupKey normalizes a string for duplicate matching: lowercase,
// alphanumeric only. "Hemoglobin (Hb)" and "HEMOGLOBIN HB" collide.
func dedupKey(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// Deduplicate merges duplicate test entries across a multi-page
// extraction. Rows collide on the normalized (name, category) pair.
//
// On collision the row carrying more information wins (longer value or
// longer range), except when both rows hold different non-empty
// values: a test legitimately repeated on the report is not a
// duplicate, so both survive. A row whose name equals its own category
// with no value is a mis-extracted section header and is dropped.
// First-seen order is preserved.
func Deduplicate(rows []types.MedicalField) []types.MedicalField {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[string]int)
	out := make([]types.MedicalField, 0, len(rows))

	for _, row := range rows {
		nameKey := dedupKey(row.FieldName)
		categoryKey := dedupKey(row.Category)
		value := strings.TrimSpace(row.FieldValue)

		if nameKey == categoryKey && value == "" {
			// Section header read as a test row.
			continue
		}

		key := nameKey + "_" + categoryKey
		pos, dup := seen[key]
		if !dup {
			seen[key] = len(out)
			out = append(out, row)
			continue
		}

		existing := out[pos]
		existingValue := strings.TrimSpace(existing.FieldValue)

		if value != "" && existingValue != "" && value != existingValue {
			// Same test, different results: keep both.
			out = append(out, row)
			continue
		}

		if len(value) > len(existingValue) || len(row.NormalRange) > len(existing.NormalRange) {
			out[pos] = row
		}
	}

	return out
}
