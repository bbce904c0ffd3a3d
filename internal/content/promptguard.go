package content

import (
	"regexp"
)

const blockedMarker = "[BLOCKED]"

// Instruction-override phrasings scrubbed from AI-bound text. This guard is
// strictly an outbound defense for the generation call: stored and displayed
// entry text must never pass through it.
var promptGuardRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|prompts|rules|context)`),
	regexp.MustCompile(`(?i)disregard\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|prompts|rules|context)`),
	regexp.MustCompile(`(?i)forget\s+(?:everything|all\s+previous|your\s+instructions)`),
	regexp.MustCompile(`(?i)\byou\s+are\s+now\b`),
	regexp.MustCompile(`(?i)\bact\s+as\s+(?:a|an|if)\b`),
	regexp.MustCompile(`(?i)\bpretend\s+(?:to\s+be|you\s+are)\b`),
	regexp.MustCompile(`(?i)\bnew\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)\bsystem\s+prompt\b`),
	regexp.MustCompile(`(?i)^\s*#{1,6}\s*(?:system|assistant|instructions)\b`),
	regexp.MustCompile(`(?i)\[/?(?:system|assistant|inst)\]`),
	regexp.MustCompile(`<\|[a-z_]+\|>`),
	regexp.MustCompile("(?s)```\\s*(?:system|prompt).*?```"),
}

// GuardPrompt replaces known prompt-injection patterns with a fixed marker.
func GuardPrompt(text string) string {
	if text == "" {
		return text
	}
	for _, re := range promptGuardRules {
		text = re.ReplaceAllString(text, blockedMarker)
	}
	return text
}
