package summarize

import (
	"testing"

	"github.com/quillhaven/journal-backend/internal/content"
)

func TestValidator(t *testing.T) {
	v := NewValidator(content.NewRedactor())

	if !v.Validate("a quiet week with steady sleep") {
		t.Fatal("clean summary should validate")
	}
	if v.Validate("patient called from 555-123-4567") {
		t.Fatal("summary echoing a phone number must fail validation")
	}

	if got := v.Accept("a quiet week"); got != "a quiet week" {
		t.Fatalf("Accept changed a clean summary: %q", got)
	}
	if got := v.Accept("reach me at jane@example.com"); got != PlaceholderSummary {
		t.Fatalf("Accept must substitute the placeholder, got %q", got)
	}
}
