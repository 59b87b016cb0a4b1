package personal

import (
	"regexp"
	"sort"
	"strings"
)

// doctorPatterns recognize referring-physician mentions. The capture
// group is the name proper, without the title.
var doctorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:[Dd][Rr])\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?i:ref\.?\s*by:?|referred\s*by:?)\s*(?:[Dd][Rr])\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?i:physician:?)\s*(?:[Dd][Rr])\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
}

// doctorFalsePositives are words that show up where a name should be
// when the model read a form caption instead.
var doctorFalsePositives = []string{"signature", "template", "lab", "clinic", "hospital"}

// ExtractDoctorNames pulls physician names out of a free-text blob
// using the title patterns above. Names are deduplicated and returned
// sorted, comma-separated. Returns "" when no pattern matches, leaving
// the caller to decide what to do with the raw text.
func ExtractDoctorNames(text string) string {
	if text == "" {
		return ""
	}

	seen := make(map[string]struct{})
	for _, pattern := range doctorPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if len(name) <= 2 {
				continue
			}
			if isDoctorFalsePositive(name) {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return ""
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func isDoctorFalsePositive(name string) bool {
	lower := strings.ToLower(name)
	for _, skip := range doctorFalsePositives {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}
