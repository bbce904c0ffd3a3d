package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quillhaven/journal-backend/internal/content"
	pkgerrors "github.com/quillhaven/journal-backend/internal/pkg/errors"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type AggregatorConfig struct {
	// GroupSize is entries per group batch, clamped to 2..10.
	GroupSize int
	// Concurrency bounds parallel generation calls within a stage.
	Concurrency int
	// GenerationTimeout caps one generation call. Zero means no extra cap.
	GenerationTimeout time.Duration
	// MaxAITextLength truncates AI-bound entry text (runes).
	MaxAITextLength int
}

func (c *AggregatorConfig) normalize() {
	if c.GroupSize < 2 {
		c.GroupSize = 2
	}
	if c.GroupSize > 10 {
		c.GroupSize = 10
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.MaxAITextLength <= 0 {
		c.MaxAITextLength = 8000
	}
}

// Aggregator turns an ordered set of accessible entries into a three-level
// summary tree. The pipeline and validator it holds are stateless, so one
// Aggregator serves concurrent requests.
type Aggregator struct {
	log       *logger.Logger
	pipeline  *content.Pipeline
	client    Client
	validator *Validator
	cfg       AggregatorConfig
}

func NewAggregator(log *logger.Logger, pipeline *content.Pipeline, client Client, validator *Validator, cfg AggregatorConfig) *Aggregator {
	cfg.normalize()
	if pipeline == nil {
		pipeline = content.NewPipeline(nil)
	}
	if validator == nil {
		validator = NewValidator(pipeline.Redactor())
	}
	return &Aggregator{
		log:       log.With("service", "Aggregator"),
		pipeline:  pipeline,
		client:    client,
		validator: validator,
		cfg:       cfg,
	}
}

// Summarize runs the individual, group, and combined stages over entries
// (ordered by creation time ascending, already access-filtered). The result
// is atomic: the caller gets either a complete tree or an error, even though
// individual-stage failures are tolerated per unit.
func (a *Aggregator) Summarize(ctx context.Context, entries []Entry) (*SummaryTree, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, have %d", pkgerrors.ErrInsufficientEntries, len(entries))
	}

	fullRange := DateRange{
		Start: entries[0].CreatedAt,
		End:   entries[len(entries)-1].CreatedAt,
	}

	units, err := a.runIndividualStage(ctx, entries)
	if err != nil {
		return nil, err
	}
	if len(units) < 2 {
		return nil, fmt.Errorf("%w: only %d of %d entries summarized", pkgerrors.ErrInsufficientEntries, len(units), len(entries))
	}

	groupNodes, err := a.runGroupStage(ctx, units)
	if err != nil {
		return nil, err
	}

	combinedNode, err := a.runCombinedStage(ctx, units, fullRange)
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	nodes := make([]SummaryNode, 0, len(units)+len(groupNodes)+1)
	for _, u := range units {
		nodes = append(nodes, SummaryNode{
			Level:          LevelIndividual,
			SummaryText:    u.SummaryText,
			WordCount:      u.WordCount,
			SourceEntryIDs: []uuid.UUID{u.EntryID},
		})
	}
	nodes = append(nodes, groupNodes...)
	nodes = append(nodes, combinedNode)

	return &SummaryTree{
		Nodes:           nodes,
		TotalEntries:    len(entries),
		HierarchyLevels: HierarchyLevels,
		DateRange:       fullRange,
	}, nil
}

// runIndividualStage summarizes each entry independently with bounded
// parallelism. One entry's generation failure excludes that entry and
// processing continues; only caller cancellation aborts the stage.
func (a *Aggregator) runIndividualStage(ctx context.Context, entries []Entry) ([]EntrySummaryUnit, error) {
	results := make([]*EntrySummaryUnit, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			unit, err := a.summarizeEntry(gctx, entry)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				a.log.Warn("Entry summary failed; excluding entry",
					"entry_id", entry.ID.String(),
					"error", err.Error(),
				)
				return nil
			}
			results[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	units := make([]EntrySummaryUnit, 0, len(entries))
	for _, u := range results {
		if u != nil {
			units = append(units, *u)
		}
	}
	return units, nil
}

func (a *Aggregator) summarizeEntry(ctx context.Context, entry Entry) (*EntrySummaryUnit, error) {
	// Reuse a stored summary verbatim. Stored summaries are not re-scanned
	// against the current rule set; see the staleness note in DESIGN.md.
	if s := strings.TrimSpace(entry.ExistingSummary); s != "" {
		return &EntrySummaryUnit{
			EntryID:     entry.ID,
			SummaryText: s,
			WordCount:   countWords(s),
			CreatedAt:   time.Now().UTC(),
		}, nil
	}

	prepared := a.pipeline.PrepareForAI(entry.Content, a.cfg.MaxAITextLength)
	if strings.TrimSpace(prepared.Text) == "" {
		return nil, &GenerationError{Stage: "individual", Err: fmt.Errorf("entry has no text content")}
	}

	gen, err := a.generate(ctx, "individual", GenerateInput{
		Title: entry.Title,
		Body:  prepared.Text,
		Mood:  entry.Mood,
		Tags:  entry.Tags,
	})
	if err != nil {
		return nil, err
	}

	accepted := a.validator.Accept(gen.SummaryText)
	return &EntrySummaryUnit{
		EntryID:     entry.ID,
		SummaryText: accepted,
		WordCount:   countWords(accepted),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// runGroupStage batches the surviving units and summarizes each batch from
// the concatenated individual summaries. Batches run concurrently; a single
// batch failure aborts the aggregation (there is no degraded substitute for
// a missing group summary).
func (a *Aggregator) runGroupStage(ctx context.Context, units []EntrySummaryUnit) ([]SummaryNode, error) {
	batches := batchUnits(units, a.cfg.GroupSize)
	nodes := make([]SummaryNode, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for bi, batch := range batches {
		bi, batch := bi, batch
		g.Go(func() error {
			gen, err := a.generate(gctx, "group", GenerateInput{
				Title: fmt.Sprintf("Journal entries %d-%d", bi*a.cfg.GroupSize+1, bi*a.cfg.GroupSize+len(batch)),
				Body:  joinSummaries(batch),
			})
			if err != nil {
				return err
			}
			text := a.validator.Accept(gen.SummaryText)
			nodes[bi] = SummaryNode{
				Level:          LevelGroup,
				SummaryText:    text,
				WordCount:      countWords(text),
				SourceEntryIDs: entryIDs(batch),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// runCombinedStage summarizes every individual summary (not the group
// summaries) into the single top-level node.
func (a *Aggregator) runCombinedStage(ctx context.Context, units []EntrySummaryUnit, dr DateRange) (SummaryNode, error) {
	body := fmt.Sprintf("Period: %s to %s\n\n%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"),
		joinSummaries(units),
	)

	gen, err := a.generate(ctx, "combined", GenerateInput{
		Title: "Journal period overview",
		Body:  body,
	})
	if err != nil {
		return SummaryNode{}, err
	}

	text := a.validator.Accept(gen.SummaryText)
	rangeCopy := dr
	return SummaryNode{
		Level:          LevelCombined,
		SummaryText:    text,
		WordCount:      countWords(text),
		SourceEntryIDs: entryIDs(units),
		DateRange:      &rangeCopy,
	}, nil
}

// generate wraps one collaborator call with the per-call timeout and stage
// attribution for the error taxonomy.
func (a *Aggregator) generate(ctx context.Context, stage string, in GenerateInput) (Generation, error) {
	callCtx := ctx
	if a.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.cfg.GenerationTimeout)
		defer cancel()
	}

	gen, err := a.client.Generate(callCtx, in)
	if err != nil {
		if ge, ok := asGenerationError(err); ok {
			ge.Stage = stage
			return Generation{}, ge
		}
		return Generation{}, &GenerationError{Stage: stage, Err: err}
	}
	return gen, nil
}

func asGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func batchUnits(units []EntrySummaryUnit, size int) [][]EntrySummaryUnit {
	var out [][]EntrySummaryUnit
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		out = append(out, units[start:end])
	}
	return out
}

func joinSummaries(units []EntrySummaryUnit) string {
	parts := make([]string, 0, len(units))
	for i, u := range units {
		parts = append(parts, fmt.Sprintf("Entry %d: %s", i+1, u.SummaryText))
	}
	return strings.Join(parts, "\n\n")
}

func entryIDs(units []EntrySummaryUnit) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.EntryID)
	}
	return ids
}
