package content

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var wsRE = regexp.MustCompile(`\s+`)

// NormalizeForHash collapses whitespace runs to single spaces and trims, so
// the fingerprint ignores markup noise and formatting-only edits.
func NormalizeForHash(text string) string {
	return strings.TrimSpace(wsRE.ReplaceAllString(text, " "))
}

// Hash returns the hex sha256 digest of text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Processed is the AI-ready form of one content snapshot. ContentHash is a
// pure function of the normalized redacted text: two entries that redact to
// the same text share a hash. That is intentional (redaction-invariant
// caching), not a collision defect.
type Processed struct {
	Text        string
	ContentHash string
}

// Pipeline composes the content stages around a shared redactor. The
// redactor is read-only here, so one Pipeline is safe for concurrent use.
type Pipeline struct {
	redactor *Redactor
}

func NewPipeline(redactor *Redactor) *Pipeline {
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &Pipeline{redactor: redactor}
}

func (p *Pipeline) Redactor() *Redactor {
	return p.redactor
}

// PrepareForAI flattens, strips, and redacts entry content, then produces
// the outbound text (prompt-guarded, truncated to maxLen runes) and the
// content hash. The hash is computed on the redacted text before guarding
// and truncation, so it stays stable across prompt-safety rule changes and
// length-limit tuning.
func (p *Pipeline) PrepareForAI(input any, maxLen int) Processed {
	redacted := p.redactor.Redact(StripTags(Flatten(input)))

	out := Processed{
		ContentHash: Hash(NormalizeForHash(redacted)),
	}

	text := GuardPrompt(redacted)
	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = string(runes[:maxLen]) + "..."
		}
	}
	out.Text = text
	return out
}
