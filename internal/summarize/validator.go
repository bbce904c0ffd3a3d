package summarize

import (
	"github.com/quillhaven/journal-backend/internal/content"
)

// PlaceholderSummary replaces any generated summary that still contains PHI.
// The generator's raw text is never surfaced in that case.
const PlaceholderSummary = "[Summary unavailable: sensitive content detected]"

// Validator re-scans generated summaries with the redactor's detectors. It
// is the second line of defense against a model echoing input fragments
// verbatim.
type Validator struct {
	redactor *content.Redactor
}

func NewValidator(redactor *content.Redactor) *Validator {
	if redactor == nil {
		redactor = content.NewRedactor()
	}
	return &Validator{redactor: redactor}
}

// Validate reports whether the summary is free of residual PHI.
func (v *Validator) Validate(summaryText string) bool {
	return !v.redactor.Detect(summaryText)
}

// Accept returns the summary if it validates, or the fixed placeholder.
func (v *Validator) Accept(summaryText string) string {
	if v.Validate(summaryText) {
		return summaryText
	}
	return PlaceholderSummary
}
