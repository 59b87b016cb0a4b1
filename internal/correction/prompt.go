package correction

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/medextract/labcheck/internal/types"
)

//go:embed assets/corrective.tmpl
var correctiveTmpl string

var correctiveTemplate = template.Must(template.New("corrective").Parse(correctiveTmpl))

// promptData feeds the corrective template.
type promptData struct {
	Page       int
	TotalPages int
	Issues     []types.ValidationIssue
}

// CorrectivePrompt renders the re-extraction prompt for a failed
// attempt. The issue list is capped so a badly broken page does not
// flood the model's context; misaligned rows are folded in ahead of
// the softer issues.
func (a Analyzer) CorrectivePrompt(report *types.ValidationReport, page, totalPages int) string {
	issues := make([]types.ValidationIssue, 0, report.IssueCount())
	issues = append(issues, report.MisalignedRows...)
	issues = append(issues, report.Issues...)
	if max := a.cfg.MaxPromptIssues; max > 0 && len(issues) > max {
		issues = issues[:max]
	}

	var buf bytes.Buffer
	err := correctiveTemplate.Execute(&buf, promptData{
		Page:       page,
		TotalPages: totalPages,
		Issues:     issues,
	})
	if err != nil {
		return correctiveTmpl
	}
	return buf.String()
}
