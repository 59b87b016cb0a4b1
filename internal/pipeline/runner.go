package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"

	"github.com/medextract/labcheck/internal/schema"
	"github.com/medextract/labcheck/internal/types"
)

// Extractor is the external model call. The prompt is either the
// caller's initial extraction prompt or a corrective prompt built from
// the previous attempt's report; the return value is the model's raw
// text output.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, prompt string) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// errInvalidExtraction marks an attempt that decoded fine but failed
// validation, so the retry loop re-prompts instead of giving up.
var errInvalidExtraction = errors.New("extraction failed validation")

// Runner drives the extract-validate-correct loop for one page. The
// Runner owns retry policy; the Extractor owns everything about how
// the model is actually called.
type Runner struct {
	pipe      *Pipeline
	extractor Extractor
}

// NewRunner builds a Runner on top of an existing Pipeline.
func NewRunner(pipe *Pipeline, extractor Extractor) *Runner {
	return &Runner{pipe: pipe, extractor: extractor}
}

// Run extracts one page and validates the result, re-prompting with a
// corrective prompt on validation failure, up to the configured
// attempt budget.
//
// When at least one attempt produced a decodable record, Run returns
// that record and its report with a nil error even if the report is
// still invalid - the caller reads report.IsValid and decides. A
// non-nil error means no attempt yielded usable output at all.
func (r *Runner) Run(ctx context.Context, initialPrompt string, page, totalPages int) (types.ExtractionRecord, *types.ValidationReport, error) {
	prompt := initialPrompt
	attempts := r.pipe.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		record types.ExtractionRecord
		report *types.ValidationReport
	)

	err := retry.Do(
		func() error {
			output, err := r.extractor.Extract(ctx, prompt)
			if err != nil {
				return fmt.Errorf("extract page %d: %w", page, err)
			}

			raw, err := schema.Decode(output)
			if err != nil {
				return fmt.Errorf("decode page %d: %w", page, err)
			}

			record, report = r.pipe.Process(raw)
			if !report.IsValid {
				prompt = r.pipe.CorrectivePrompt(report, page, totalPages)
				return fmt.Errorf("%w: %s", errInvalidExtraction, report.Reason)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(0),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.pipe.logger.Warn("re-extracting page",
				"page", page,
				"attempt", n+1,
				"error", err,
			)
		}),
	)

	if err != nil {
		// Attempts exhausted. If validation was the only problem, hand
		// the caller what we have; the record is still the best
		// available reading of the page.
		if report != nil && errors.Is(err, errInvalidExtraction) {
			return record, report, nil
		}
		return types.ExtractionRecord{}, nil, err
	}
	return record, report, nil
}
