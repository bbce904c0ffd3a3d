package content

import (
	"regexp"
)

// Rule pairs a compiled detector with the placeholder that replaces its
// matches. Rules are applied in order.
type Rule struct {
	Label       string
	Re          *regexp.Regexp
	Replacement string
}

// Redactor removes PHI/PII categories from plain text. It is stateless once
// constructed and safe for concurrent use; swapping the rule set means
// constructing a new value, never mutating a shared one.
type Redactor struct {
	rules []Rule
}

// Default PHI/PII rule catalog. Precision/recall here is a tuning concern;
// order matters where patterns overlap (SSN and MRN before phone).
func defaultRules() []Rule {
	return []Rule{
		{Label: "email", Re: regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), Replacement: "[EMAIL]"},
		{Label: "ssn", Re: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), Replacement: "[SSN]"},
		{Label: "mrn", Re: regexp.MustCompile(`(?i)\b(?:mrn|medical record(?: number| no\.?)?)[#:\s]*\d{5,10}\b`), Replacement: "[MRN]"},
		{Label: "dob", Re: regexp.MustCompile(`(?i)\b(?:dob|date of birth|born(?: on)?)[:\s]+\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`), Replacement: "[DOB]"},
		{Label: "phone", Re: regexp.MustCompile(`(\+?1[\-.\s]?)?\(?\d{3}\)?[\-.\s]?\d{3}[\-.\s]?\d{4}\b`), Replacement: "[PHONE]"},
		{Label: "credit_card", Re: regexp.MustCompile(`\b(?:\d{4}[\-\s]?){3}\d{4}\b`), Replacement: "[CARD]"},
		{Label: "ip_address", Re: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), Replacement: "[IP]"},
		{Label: "address", Re: regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct)\b`), Replacement: "[ADDRESS]"},
		{Label: "person_name", Re: regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`), Replacement: "[NAME]"},
	}
}

func NewRedactor() *Redactor {
	return &Redactor{rules: defaultRules()}
}

func NewRedactorWithRules(rules []Rule) *Redactor {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Re == nil {
			continue
		}
		out = append(out, r)
	}
	return &Redactor{rules: out}
}

// Redact replaces every matching span with its category placeholder.
// Unmatched text passes through unchanged.
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	for _, rule := range r.rules {
		text = rule.Re.ReplaceAllString(text, rule.Replacement)
	}
	return text
}

// Detect reports whether any rule still matches. Used to re-scan generated
// summaries before they are accepted.
func (r *Redactor) Detect(text string) bool {
	if text == "" {
		return false
	}
	for _, rule := range r.rules {
		if rule.Re.MatchString(text) {
			return true
		}
	}
	return false
}

// Rules returns a copy of the active rule set.
func (r *Redactor) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
