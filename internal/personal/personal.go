// Package personal validates the patient-metadata section of a raw
// extraction: gender, date of birth, age, report date, and the
// patient/doctor name fields. Every function is total; any input it
// cannot make sense of degrades to the empty string.
package personal

import (
	_ "embed"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/medextract/labcheck/internal/types"
)

//go:embed assets/lexicon.yaml
var lexiconYAML []byte

type lexicon struct {
	Gender struct {
		Male   []string `yaml:"male"`
		Female []string `yaml:"female"`
	} `yaml:"gender"`
	FacilityKeywords []string `yaml:"facility_keywords"`
}

var (
	maleVariants     map[string]struct{}
	femaleVariants   map[string]struct{}
	facilityKeywords []string
)

func init() {
	var lex lexicon
	if err := yaml.Unmarshal(lexiconYAML, &lex); err != nil {
		panic("personal: bad embedded lexicon: " + err.Error())
	}
	maleVariants = make(map[string]struct{}, len(lex.Gender.Male))
	for _, v := range lex.Gender.Male {
		maleVariants[fold(v)] = struct{}{}
	}
	femaleVariants = make(map[string]struct{}, len(lex.Gender.Female))
	for _, v := range lex.Gender.Female {
		femaleVariants[fold(v)] = struct{}{}
	}
	for _, kw := range lex.FacilityKeywords {
		facilityKeywords = append(facilityKeywords, fold(kw))
	}
}

// foldTransform lowercases nothing by itself; it decomposes and strips
// combining marks, which removes both Latin accents and Arabic
// diacritics (tashkeel).
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold canonicalizes a string for lexicon comparison: trim, lowercase,
// strip combining marks, and unify the Arabic hamza/alef and final-yeh
// spelling variants.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(foldTransform, s); err == nil {
		s = out
	}
	r := strings.NewReplacer(
		"أ", "ا", // alef with hamza above -> alef
		"إ", "ا", // alef with hamza below -> alef
		"آ", "ا", // alef with madda -> alef
		"ى", "ي", // alef maqsura -> yeh
	)
	return r.Replace(s)
}

// ValidateGender maps a raw gender string onto "Male", "Female", or
// "". Only lexicon entries are accepted; the output never contains
// non-Latin characters.
func ValidateGender(gender string) string {
	key := fold(gender)
	if key == "" {
		return ""
	}
	if _, ok := maleVariants[key]; ok {
		return "Male"
	}
	if _, ok := femaleVariants[key]; ok {
		return "Female"
	}
	return ""
}

// ValidatePatientName accepts a candidate patient name only when it is
// at least three characters and does not look like a facility, device,
// or lab caption. The model extracting an organization name instead of
// the patient is a common failure mode.
func ValidatePatientName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 3 {
		return ""
	}
	folded := fold(name)
	for _, kw := range facilityKeywords {
		if strings.Contains(folded, kw) {
			return ""
		}
	}
	return name
}

// ValidateDoctorNames screens a doctor-name candidate. When the blob
// contains recognizable "Dr. Name" patterns they are extracted and
// deduplicated; otherwise the string passes as-is if it is long enough
// to be a name.
func ValidateDoctorNames(doctorText string) string {
	doctorText = strings.TrimSpace(doctorText)
	if extracted := ExtractDoctorNames(doctorText); extracted != "" {
		return extracted
	}
	if utf8.RuneCountInString(doctorText) < 3 {
		return ""
	}
	return doctorText
}

// Validator normalizes the personal-info section of raw extractions.
// The zero value is not usable; construct with New.
type Validator struct {
	ageTolerance int
	now          func() time.Time
}

// New returns a Validator. ageToleranceYears is how far the
// model-provided age may differ from the DOB-derived age before the
// DOB-derived value wins.
func New(ageToleranceYears int) Validator {
	return Validator{ageTolerance: ageToleranceYears, now: time.Now}
}

// Validate normalizes the personal-info section of a raw extraction.
// Each field degrades independently; a garbage DOB never takes the
// gender down with it. The returned record carries no medical rows;
// the field pipeline owns those.
func (v Validator) Validate(raw types.RawExtraction) types.ExtractionRecord {
	rec := types.ExtractionRecord{
		PatientName:   ValidatePatientName(raw.PatientName),
		PatientGender: ValidateGender(raw.PatientGender),
		PatientDob:    NormalizeDob(raw.PatientDob),
		ReportDate:    NormalizeDate(raw.ReportDate),
		DoctorNames:   ValidateDoctorNames(raw.DoctorNames),
	}
	rec.PatientAge = v.resolveAge(raw.PatientAge, rec.PatientDob, v.now())
	return rec
}
