package content

import (
	"regexp"
	"strings"
	"testing"
)

var phoneDigits = regexp.MustCompile(`\d{3}[\-.\s]?\d{3}[\-.\s]?\d{4}`)

func TestRedactCategories(t *testing.T) {
	r := NewRedactor()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"phone", "Call me at 555-123-4567 tomorrow", "[PHONE]"},
		{"email", "wrote to jane.doe@example.com about it", "[EMAIL]"},
		{"ssn", "my ssn is 123-45-6789", "[SSN]"},
		{"mrn", "MRN: 84712345 from the visit", "[MRN]"},
		{"dob", "DOB: 04/12/1988 per the chart", "[DOB]"},
		{"address", "moved to 42 Willow Lane last week", "[ADDRESS]"},
		{"name", "appointment with Dr. Alvarez went fine", "[NAME]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := r.Redact(tc.in)
			if !strings.Contains(out, tc.want) {
				t.Fatalf("Redact(%q) = %q, missing %s", tc.in, out, tc.want)
			}
		})
	}
}

func TestRedactRemovesPhonePattern(t *testing.T) {
	r := NewRedactor()
	out := r.Redact("Call me at 555-123-4567")
	if phoneDigits.MatchString(out) {
		t.Fatalf("phone digits survived: %q", out)
	}
}

func TestRedactIsPureAndIdempotent(t *testing.T) {
	r := NewRedactor()
	in := "nothing sensitive here, just a walk in the park"
	if out := r.Redact(in); out != in {
		t.Fatalf("unmatched text must pass through: %q", out)
	}

	sensitive := "reach Dr. Smith at 555-123-4567 or doc@example.com"
	once := r.Redact(sensitive)
	twice := r.Redact(once)
	if once != twice {
		t.Fatalf("not idempotent: once=%q twice=%q", once, twice)
	}
	for i := 0; i < 3; i++ {
		if r.Redact(sensitive) != once {
			t.Fatal("redaction must be deterministic")
		}
	}
}

func TestDetect(t *testing.T) {
	r := NewRedactor()
	if !r.Detect("the number was 555-123-4567") {
		t.Fatal("Detect should flag a phone number")
	}
	if r.Detect("a calm, uneventful day") {
		t.Fatal("Detect should pass clean text")
	}
	if r.Detect(r.Redact("the number was 555-123-4567")) {
		t.Fatal("redacted output must not re-trigger detection")
	}
}

func TestCustomRules(t *testing.T) {
	r := NewRedactorWithRules([]Rule{
		{Label: "codename", Re: regexp.MustCompile(`\bproject-x\b`), Replacement: "[PROJECT]"},
		{Label: "broken", Re: nil, Replacement: "ignored"},
	})
	if len(r.Rules()) != 1 {
		t.Fatalf("nil-pattern rules should be dropped, got %d rules", len(r.Rules()))
	}
	if out := r.Redact("status of project-x today"); out != "status of [PROJECT] today" {
		t.Fatalf("custom rule: %q", out)
	}
}
