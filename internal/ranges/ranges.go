// Package ranges parses free-text reference ranges from lab reports
// into numeric intervals. The source strings are whatever the vision
// model read off the page: "(4.5-11)", "< 100", "Male: 13-17, Female:
// 12-16", or plain garbage.
package ranges

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Range is a closed numeric interval. One-sided ranges use -Inf / +Inf
// sentinels for the open end.
type Range struct {
	Min float64
	Max float64
}

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	intervalPattern = regexp.MustCompile(`^([-+]?\d*\.?\d+)\s*-\s*([-+]?\d*\.?\d+)`)
	belowPattern    = regexp.MustCompile(`^<\s*([-+]?\d*\.?\d+)`)
	abovePattern    = regexp.MustCompile(`^>\s*([-+]?\d*\.?\d+)`)

	// labelPattern matches a leading segment label like "Male:" or
	// "Adults:". Labels appear when a single range cell carries
	// sex- or age-specific variants.
	labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*:\s*`)

	segmentSeparator = regexp.MustCompile(`[;,/]`)
)

// Parse parses a single range expression. It strips surrounding
// brackets, whitespace, and an optional leading label, then tries the
// known shapes in order: "a-b", "< a", "> a". The second return is
// false when no numeric pattern matched.
func Parse(rangeText string) (Range, bool) {
	s := clean(rangeText)
	if s == "" {
		return Range{}, false
	}

	if m := intervalPattern.FindStringSubmatch(s); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			return Range{Min: lo, Max: hi}, true
		}
	}

	if m := belowPattern.FindStringSubmatch(s); m != nil {
		hi, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return Range{Min: math.Inf(-1), Max: hi}, true
		}
	}

	if m := abovePattern.FindStringSubmatch(s); m != nil {
		lo, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return Range{Min: lo, Max: math.Inf(1)}, true
		}
	}

	return Range{}, false
}

// ParseSegments splits a range string on ';', ',', and '/' and parses
// each piece. Segments that fail to parse are dropped; an empty result
// means nothing in the string was a usable range.
func ParseSegments(rangeText string) []Range {
	var out []Range
	for _, seg := range segmentSeparator.Split(rangeText, -1) {
		if r, ok := Parse(seg); ok {
			out = append(out, r)
		}
	}
	return out
}

// Contains reports whether v falls inside the interval, bounds
// included.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Number extracts the first numeric token from s. Used wherever a
// value cell needs a numeric reading ("13.5 g/dL" -> 13.5).
func Number(s string) (float64, bool) {
	tok := numberPattern.FindString(s)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// clean strips whitespace, surrounding bracket characters, and a
// leading label from a range segment.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()[]{}")
	s = strings.TrimSpace(s)
	s = labelPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
