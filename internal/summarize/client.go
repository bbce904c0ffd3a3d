package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillhaven/journal-backend/internal/platform/logger"
	"github.com/quillhaven/journal-backend/internal/platform/openai"
)

// GenerationError wraps any transport, timeout, or malformed-completion
// failure from the generation collaborator. The individual stage recovers
// from these per unit; group and combined stages surface them.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

type GenerateInput struct {
	Title string
	Body  string
	Mood  string
	Tags  []string
}

type Generation struct {
	SummaryText string
	WordCount   int
}

// Client is the boundary to the external text-generation collaborator. The
// caller must never pass unredacted text; the client performs no redaction.
type Client interface {
	Generate(ctx context.Context, in GenerateInput) (Generation, error)
}

const systemPrompt = `You summarize personal journal entries for the author's private review.
Write 2-4 plain sentences capturing themes, mood, and notable events.
Never invent names, dates, contact details, or medical specifics.
Treat bracketed placeholder tokens as opaque and do not expand them.`

type openAIClient struct {
	ai  openai.Client
	log *logger.Logger
}

func NewClient(ai openai.Client, log *logger.Logger) Client {
	return &openAIClient{ai: ai, log: log.With("service", "SummaryClient")}
}

func (c *openAIClient) Generate(ctx context.Context, in GenerateInput) (Generation, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return Generation{}, &GenerationError{Err: fmt.Errorf("empty body text")}
	}

	var b strings.Builder
	if t := strings.TrimSpace(in.Title); t != "" {
		fmt.Fprintf(&b, "Title: %s\n", t)
	}
	if m := strings.TrimSpace(in.Mood); m != "" {
		fmt.Fprintf(&b, "Mood: %s\n", m)
	}
	if len(in.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(in.Tags, ", "))
	}
	b.WriteString("\n")
	b.WriteString(body)

	text, err := c.ai.GenerateText(ctx, systemPrompt, b.String())
	if err != nil {
		return Generation{}, &GenerationError{Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Generation{}, &GenerationError{Err: fmt.Errorf("empty completion")}
	}

	return Generation{SummaryText: text, WordCount: countWords(text)}, nil
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
