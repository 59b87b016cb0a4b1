// Package schema is the decode boundary between the vision model's
// output and the typed pipeline. Model output is messy: JSON wrapped
// in markdown fences, surrounded by prose, with keys missing or
// carrying the wrong type. Decode absorbs all of that and produces a
// RawExtraction with every field present and string-coerced; it is the
// only place in the core that can fail, and it fails only when the
// payload contains no usable JSON object at all.
package schema

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/medextract/labcheck/internal/types"
)

//go:embed assets/extraction.json
var extractionSchema []byte

// ErrNoJSON is returned when no JSON object could be located in the
// model output.
var ErrNoJSON = errors.New("no JSON object found in model output")

var compiled = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(extractionSchema)); err != nil {
		panic("schema: failed to load extraction schema: " + err.Error())
	}
	s, err := compiler.Compile("extraction.json")
	if err != nil {
		panic("schema: failed to compile extraction schema: " + err.Error())
	}
	return s
}()

// Raw returns the embedded extraction schema document. Callers
// building a structured-output request can hand it to their model
// client as-is.
func Raw() json.RawMessage {
	return json.RawMessage(extractionSchema)
}

// Decode parses model output into a RawExtraction. It tolerates
// markdown code fences and surrounding commentary and coerces every
// field to a string so that a numeric patient_age or a null unit
// cannot break the pipeline. A mis-shaped payload is bound anyway,
// with malformed members degrading to their defaults; the schema
// violation is noted on the result for the validation report. The only
// failure is ErrNoJSON: no JSON object in the content at all.
func Decode(content string) (types.RawExtraction, error) {
	payload, err := extractJSON(content)
	if err != nil {
		return types.RawExtraction{}, err
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return types.RawExtraction{}, fmt.Errorf("failed to decode extraction JSON: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return types.RawExtraction{}, ErrNoJSON
	}

	raw := bind(obj)
	if err := compiled.Validate(doc); err != nil {
		raw.SchemaViolation = err.Error()
	}
	return raw, nil
}

// extractJSON finds the JSON object inside possibly-decorated model
// output. Candidates are tried in order: the raw content, the content
// with code fences stripped, and the widest {...} span.
func extractJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrNoJSON
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, fmt.Errorf("failed to normalize extraction JSON: %w", mErr)
			}
			return normalized, nil
		}
	}
	return nil, ErrNoJSON
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// bind maps the loose object onto RawExtraction, coercing scalars to
// strings and skipping anything that is not row-shaped.
func bind(obj map[string]any) types.RawExtraction {
	raw := types.RawExtraction{
		PatientName:   asString(obj["patient_name"]),
		PatientAge:    asString(obj["patient_age"]),
		PatientDob:    asString(obj["patient_dob"]),
		PatientGender: asString(obj["patient_gender"]),
		ReportDate:    asString(obj["report_date"]),
		DoctorNames:   asString(obj["doctor_names"]),
	}

	rows, _ := obj["medical_data"].([]any)
	for _, entry := range rows {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		field := types.RawField{
			FieldName:   asString(m["field_name"]),
			FieldValue:  asString(m["field_value"]),
			FieldUnit:   asString(m["field_unit"]),
			NormalRange: asString(m["normal_range"]),
			FieldType:   asString(m["field_type"]),
			Category:    asString(m["category"]),
			Notes:       asString(m["notes"]),
		}
		if b, ok := m["is_normal"].(bool); ok {
			field.IsNormal = &b
		}
		raw.MedicalData = append(raw.MedicalData, field)
	}
	return raw
}

// asString coerces a decoded JSON scalar to a string. Numbers keep a
// compact representation; null, objects, and arrays become "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
