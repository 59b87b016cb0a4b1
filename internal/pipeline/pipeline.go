// Package pipeline wires the validators together: personal-info
// validation, row normalization, deduplication, and defect analysis.
// Everything here is pure computation over in-memory data; the only
// component that touches the outside world is the Runner, and even it
// only does so through a caller-supplied Extractor.
package pipeline

import (
	"log/slog"

	"github.com/medextract/labcheck/internal/config"
	"github.com/medextract/labcheck/internal/correction"
	"github.com/medextract/labcheck/internal/fields"
	"github.com/medextract/labcheck/internal/personal"
	"github.com/medextract/labcheck/internal/schema"
	"github.com/medextract/labcheck/internal/types"
)

// Pipeline validates raw extractions. Safe for concurrent use: it
// holds only configuration.
type Pipeline struct {
	cfg      config.Config
	personal personal.Validator
	analyzer correction.Analyzer
	logger   *slog.Logger
}

// New builds a Pipeline from config. A nil logger falls back to
// slog.Default().
func New(cfg config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		personal: personal.New(cfg.AgeToleranceYears),
		analyzer: correction.New(cfg),
		logger:   logger,
	}
}

// Process validates one page's raw extraction and returns the cleaned
// record together with a fresh validation report. The input is not
// mutated; the returned record is owned by the caller.
func (p *Pipeline) Process(raw types.RawExtraction) (types.ExtractionRecord, *types.ValidationReport) {
	rec := p.personal.Validate(raw)

	rows := make([]types.MedicalField, 0, len(raw.MedicalData))
	for _, rf := range raw.MedicalData {
		rows = append(rows, rf.Field())
	}
	normalized := fields.NormalizeAll(rows)
	rec.MedicalData = fields.Deduplicate(normalized)

	report := p.analyzer.Analyze(rec)
	report.RowsDropped = len(rows) - len(rec.MedicalData)

	if raw.SchemaViolation != "" {
		report.Add(types.ValidationIssue{
			Type:   types.IssueMalformedPayload,
			Field:  "payload",
			Reason: "payload deviates from the extraction schema: " + raw.SchemaViolation,
		})
		if report.IsValid {
			report.IsValid = false
			report.Reason = "payload deviates from the extraction schema"
		}
	}

	p.logger.Debug("processed extraction",
		"report_id", report.ID,
		"rows_in", len(rows),
		"rows_out", len(rec.MedicalData),
		"is_valid", report.IsValid,
	)
	return rec, report
}

// ProcessJSON decodes loose model output and processes it. This is the
// entry point for callers holding raw model text rather than a typed
// payload.
func (p *Pipeline) ProcessJSON(content string) (types.ExtractionRecord, *types.ValidationReport, error) {
	raw, err := schema.Decode(content)
	if err != nil {
		return types.ExtractionRecord{}, nil, err
	}
	rec, report := p.Process(raw)
	return rec, report, nil
}

// CorrectivePrompt renders the re-extraction prompt for a failed
// report.
func (p *Pipeline) CorrectivePrompt(report *types.ValidationReport, page, totalPages int) string {
	return p.analyzer.CorrectivePrompt(report, page, totalPages)
}

// MergePages combines per-page records into a single report record.
// Rows are concatenated in page order and re-deduplicated; personal
// fields keep the first non-empty value seen, since page one carries
// the header.
func MergePages(pages []types.ExtractionRecord) types.ExtractionRecord {
	var merged types.ExtractionRecord
	var rows []types.MedicalField

	for _, page := range pages {
		if merged.PatientName == "" {
			merged.PatientName = page.PatientName
		}
		if merged.PatientAge == "" {
			merged.PatientAge = page.PatientAge
		}
		if merged.PatientDob == "" {
			merged.PatientDob = page.PatientDob
		}
		if merged.PatientGender == "" {
			merged.PatientGender = page.PatientGender
		}
		if merged.ReportDate == "" {
			merged.ReportDate = page.ReportDate
		}
		if merged.DoctorNames == "" {
			merged.DoctorNames = page.DoctorNames
		}
		rows = append(rows, page.MedicalData...)
	}

	merged.MedicalData = fields.Deduplicate(rows)
	return merged
}
