package personal

import (
	"strconv"
	"strings"
	"time"
)

// dobLayouts is the ordered list of date formats the normalizers try.
// Day-first comes before month-first because the source reports are
// regional; first successful parse wins.
var dobLayouts = []string{
	"02/01/2006",
	"01/02/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"02/01/06",
	"01/02/06",
}

// dateLayouts are the formats tried for report dates. Two-digit years
// are excluded here; report dates on printed forms carry full years.
var dateLayouts = []string{
	"02/01/2006",
	"01/02/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// maxAge rejects DOB parses that put the patient outside a human
// lifespan, which catches century-off and far-future OCR misreads.
const maxAge = 130

func parseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDob converts a date of birth in any supported format to
// YYYY-MM-DD, or "" when unparseable.
func NormalizeDob(dob string) string {
	t, ok := parseDate(dob, dobLayouts)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// NormalizeDate converts a report date to YYYY-MM-DD, dropping any
// trailing time-of-day component first ("2025-12-31 10:00:02.0" ->
// "2025-12-31"). Idempotent: its own output parses unchanged.
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, ' '); i >= 0 {
		date = date[:i]
	}
	t, ok := parseDate(date, dateLayouts)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// CalculateAge computes the age in whole years from a DOB string at
// the current time. Returns "" for unparseable dates or results
// outside [0, maxAge].
func CalculateAge(dob string) string {
	return AgeAt(dob, time.Now())
}

// AgeAt is CalculateAge against an explicit reference time.
func AgeAt(dob string, now time.Time) string {
	t, ok := parseDate(dob, dobLayouts)
	if !ok {
		return ""
	}
	age := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		age--
	}
	if age < 0 || age > maxAge {
		return ""
	}
	return strconv.Itoa(age)
}

// resolveAge decides the final age field. A provided age survives only
// when it is a plausible integer and does not contradict the
// normalized DOB by more than the tolerance; the DOB is the more
// trustworthy source because the model frequently copies an age from
// the wrong report line.
func (v Validator) resolveAge(providedAge, normalizedDob string, now time.Time) string {
	provided, err := strconv.Atoi(strings.TrimSpace(providedAge))
	providedOK := err == nil && provided >= 1 && provided <= maxAge

	if providedOK {
		if normalizedDob == "" {
			return strconv.Itoa(provided)
		}
		derived := AgeAt(normalizedDob, now)
		if derived == "" {
			return strconv.Itoa(provided)
		}
		derivedN, _ := strconv.Atoi(derived)
		if abs(provided-derivedN) > v.ageTolerance {
			return derived
		}
		return strconv.Itoa(provided)
	}

	if normalizedDob != "" {
		return AgeAt(normalizedDob, now)
	}
	return ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
