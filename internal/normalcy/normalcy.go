// Package normalcy decides whether a measured value falls inside its
// reference range. The decision is recomputed deterministically for
// every row; the extraction model's own is_normal guess is never
// trusted, because model arithmetic over ranges is unreliable.
package normalcy

import (
	"regexp"
	"strings"

	"github.com/medextract/labcheck/internal/ranges"
)

// Qualitative keyword patterns, matched against the lowercased value
// the way these words appear on real reports ("NAD", "Within Normal
// Limits", "HIGH*"). Word boundaries matter: "abnormal" must not match
// the "normal" keyword.
var (
	normalPattern = regexp.MustCompile(
		`\b(no abnormality detected|within normal limits|normal|nad|negative|wnl|unremarkable)\b`)
	abnormalPattern = regexp.MustCompile(
		`\b(abnormal|positive|detected|elevated|low|high|critical|flagged)\b`)
)

// emptyIndicators are placeholder tokens that mean "no result".
var emptyIndicators = map[string]struct{}{
	"":     {},
	"-":    {},
	"--":   {},
	"—":    {},
	"*":    {},
	"**":   {},
	".":    {},
	"..":   {},
	"n/a":  {},
	"na":   {},
	"nil":  {},
	"none": {},
	"null": {},
}

// Evaluate returns true when fieldValue is inside normalRange, false
// when it is demonstrably outside, and nil when no verdict is
// possible. A nil result is deliberately distinct from false: "cannot
// determine" must never be rendered as "abnormal".
func Evaluate(fieldValue, normalRange string) *bool {
	value := strings.ToLower(strings.TrimSpace(fieldValue))
	if _, empty := emptyIndicators[value]; empty {
		return nil
	}

	// Qualitative results decide before any numeric work. "negative"
	// must win even when the range cell is junk. Normal phrases are
	// checked first so "no abnormality detected" does not trip on its
	// own "detected".
	if normalPattern.MatchString(value) {
		t := true
		return &t
	}
	if abnormalPattern.MatchString(value) {
		f := false
		return &f
	}

	rangeText := strings.ToLower(strings.TrimSpace(normalRange))
	if _, empty := emptyIndicators[rangeText]; empty {
		return nil
	}

	segments := ranges.ParseSegments(normalRange)
	if len(segments) == 0 {
		// Range cell present but nothing numeric in it; never
		// fabricate a verdict without a real range.
		return nil
	}

	v, ok := ranges.Number(fieldValue)
	if !ok {
		return nil
	}

	// Multi-segment ranges (sex-specific, age-specific) count as
	// normal when the value sits inside any one segment.
	for _, seg := range segments {
		if seg.Contains(v) {
			t := true
			return &t
		}
	}
	f := false
	return &f
}
