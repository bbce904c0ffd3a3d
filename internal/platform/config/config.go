package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quillhaven/journal-backend/internal/platform/envutil"
)

// Summarization holds the tuning knobs for the hierarchical summary pipeline.
// Values load from an optional YAML file and may be overridden per-field by
// environment variables.
type Summarization struct {
	// GroupSize is the number of individual summaries per group batch (2..10).
	GroupSize int `yaml:"group_size"`
	// Concurrency bounds parallel generation calls in the individual stage.
	Concurrency int `yaml:"concurrency"`
	// GenerationTimeoutSeconds caps a single generation call.
	GenerationTimeoutSeconds int `yaml:"generation_timeout_seconds"`
	// MaxAITextLength truncates AI-bound entry text (runes).
	MaxAITextLength int `yaml:"max_ai_text_length"`
}

func DefaultSummarization() Summarization {
	return Summarization{
		GroupSize:                3,
		Concurrency:              4,
		GenerationTimeoutSeconds: 45,
		MaxAITextLength:          8000,
	}
}

// LoadSummarization reads SUMMARY_CONFIG_PATH if set, then applies env
// overrides, then clamps to valid ranges.
func LoadSummarization() (Summarization, error) {
	cfg := DefaultSummarization()

	if path := envutil.Str("SUMMARY_CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read summary config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse summary config: %w", err)
		}
	}

	cfg.GroupSize = envutil.Int("SUMMARY_GROUP_SIZE", cfg.GroupSize)
	cfg.Concurrency = envutil.Int("SUMMARY_CONCURRENCY", cfg.Concurrency)
	cfg.GenerationTimeoutSeconds = envutil.Int("SUMMARY_GENERATION_TIMEOUT_SECONDS", cfg.GenerationTimeoutSeconds)
	cfg.MaxAITextLength = envutil.Int("SUMMARY_MAX_AI_TEXT_LENGTH", cfg.MaxAITextLength)

	cfg.clamp()
	return cfg, nil
}

func (c *Summarization) clamp() {
	if c.GroupSize < 2 {
		c.GroupSize = 2
	}
	if c.GroupSize > 10 {
		c.GroupSize = 10
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.GenerationTimeoutSeconds < 1 {
		c.GenerationTimeoutSeconds = 45
	}
	if c.MaxAITextLength < 100 {
		c.MaxAITextLength = 100
	}
}

func (c Summarization) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}
