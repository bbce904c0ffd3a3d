package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quillhaven/journal-backend/internal/content"
	pkgerrors "github.com/quillhaven/journal-backend/internal/pkg/errors"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []GenerateInput
	fn    func(in GenerateInput) (Generation, error)
}

func (f *fakeClient) Generate(ctx context.Context, in GenerateInput) (Generation, error) {
	if err := ctx.Err(); err != nil {
		return Generation{}, &GenerationError{Err: err}
	}
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(in)
	}
	text := "summary of: " + firstLine(in.Body)
	return Generation{SummaryText: text, WordCount: countWords(text)}, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testEntries(n int) []Entry {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("Day %d", i+1),
			Content:   fmt.Sprintf("entry number %d about an ordinary day", i+1),
			CreatedAt: base.AddDate(0, 0, i),
		})
	}
	return entries
}

func newTestAggregator(t *testing.T, client Client, cfg AggregatorConfig) *Aggregator {
	t.Helper()
	pipeline := content.NewPipeline(content.NewRedactor())
	return NewAggregator(testLogger(t), pipeline, client, NewValidator(pipeline.Redactor()), cfg)
}

func TestSummarizeTreeShape(t *testing.T) {
	fake := &fakeClient{}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 3, Concurrency: 2})

	entries := testEntries(7)
	tree, err := agg.Summarize(context.Background(), entries)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var individuals, groups, combined []SummaryNode
	for _, n := range tree.Nodes {
		switch n.Level {
		case LevelIndividual:
			individuals = append(individuals, n)
		case LevelGroup:
			groups = append(groups, n)
		case LevelCombined:
			combined = append(combined, n)
		}
	}

	if len(individuals) != 7 {
		t.Fatalf("individual nodes: got %d want 7", len(individuals))
	}
	if len(groups) != 3 {
		t.Fatalf("group nodes: got %d want 3", len(groups))
	}
	if got := []int{len(groups[0].SourceEntryIDs), len(groups[1].SourceEntryIDs), len(groups[2].SourceEntryIDs)}; got[0] != 3 || got[1] != 3 || got[2] != 1 {
		t.Fatalf("group batch sizes: %v, want [3 3 1]", got)
	}
	if len(combined) != 1 {
		t.Fatalf("combined nodes: got %d want 1", len(combined))
	}
	if len(combined[0].SourceEntryIDs) != 7 {
		t.Fatalf("combined source ids: got %d want 7", len(combined[0].SourceEntryIDs))
	}

	// Generation order: individuals, then groups, then combined.
	for i, n := range tree.Nodes {
		switch {
		case i < 7 && n.Level != LevelIndividual,
			i >= 7 && i < 10 && n.Level != LevelGroup,
			i == 10 && n.Level != LevelCombined:
			t.Fatalf("node %d has level %s", i, n.Level)
		}
	}

	// Individual nodes preserve original entry order.
	for i, n := range individuals {
		if n.SourceEntryIDs[0] != entries[i].ID {
			t.Fatalf("individual %d out of order", i)
		}
	}

	if tree.TotalEntries != 7 || tree.HierarchyLevels != 3 {
		t.Fatalf("metadata: total=%d levels=%d", tree.TotalEntries, tree.HierarchyLevels)
	}
	if !tree.DateRange.Start.Equal(entries[0].CreatedAt) || !tree.DateRange.End.Equal(entries[6].CreatedAt) {
		t.Fatalf("date range: %+v", tree.DateRange)
	}
}

func TestSummarizeRejectsSingleEntry(t *testing.T) {
	fake := &fakeClient{}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 3, Concurrency: 2})

	_, err := agg.Summarize(context.Background(), testEntries(1))
	if !errors.Is(err, pkgerrors.ErrInsufficientEntries) {
		t.Fatalf("expected ErrInsufficientEntries, got %v", err)
	}
	if fake.callCount() != 0 {
		t.Fatalf("no generation call may happen before the entry check, got %d", fake.callCount())
	}
}

func TestSummarizeSubstitutesPlaceholderForResidualPHI(t *testing.T) {
	fake := &fakeClient{fn: func(in GenerateInput) (Generation, error) {
		if strings.HasPrefix(in.Title, "Day") {
			// Generator echoes a phone number back.
			return Generation{SummaryText: "they called 555-123-4567 twice", WordCount: 5}, nil
		}
		return Generation{SummaryText: "a calm stretch of days", WordCount: 5}, nil
	}}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 2, Concurrency: 1})

	tree, err := agg.Summarize(context.Background(), testEntries(2))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	for _, n := range tree.Nodes {
		if n.Level != LevelIndividual {
			continue
		}
		if n.SummaryText != PlaceholderSummary {
			t.Fatalf("expected placeholder, got %q", n.SummaryText)
		}
	}
}

func TestSummarizeToleratesIndividualFailure(t *testing.T) {
	entries := testEntries(5)
	failID := entries[2].Title

	fake := &fakeClient{fn: func(in GenerateInput) (Generation, error) {
		if in.Title == failID {
			return Generation{}, &GenerationError{Err: errors.New("upstream 500")}
		}
		text := "summary of " + in.Title
		return Generation{SummaryText: text, WordCount: countWords(text)}, nil
	}}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 2, Concurrency: 3})

	tree, err := agg.Summarize(context.Background(), entries)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var individuals int
	var combined *SummaryNode
	for i := range tree.Nodes {
		switch tree.Nodes[i].Level {
		case LevelIndividual:
			individuals++
		case LevelCombined:
			combined = &tree.Nodes[i]
		}
	}
	if individuals != 4 {
		t.Fatalf("individual nodes: got %d want 4", individuals)
	}
	if combined == nil || len(combined.SourceEntryIDs) != 4 {
		t.Fatalf("combined should span the 4 successful entries")
	}
	// Total entries still counts the excluded one.
	if tree.TotalEntries != 5 {
		t.Fatalf("total entries: got %d want 5", tree.TotalEntries)
	}
}

func TestSummarizeFailsWhenTooFewUnitsSurvive(t *testing.T) {
	fake := &fakeClient{fn: func(in GenerateInput) (Generation, error) {
		return Generation{}, &GenerationError{Err: errors.New("upstream down")}
	}}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 3, Concurrency: 2})

	_, err := agg.Summarize(context.Background(), testEntries(3))
	if !errors.Is(err, pkgerrors.ErrInsufficientEntries) {
		t.Fatalf("expected ErrInsufficientEntries, got %v", err)
	}
}

func TestSummarizeSurfacesGroupStageFailure(t *testing.T) {
	fake := &fakeClient{fn: func(in GenerateInput) (Generation, error) {
		if strings.HasPrefix(in.Title, "Journal entries") {
			return Generation{}, &GenerationError{Err: errors.New("timeout")}
		}
		return Generation{SummaryText: "fine day", WordCount: 2}, nil
	}}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 2, Concurrency: 2})

	_, err := agg.Summarize(context.Background(), testEntries(4))
	if err == nil {
		t.Fatal("group failure must abort the aggregation")
	}
	if !IsGenerationError(err) {
		t.Fatalf("expected a generation error, got %v", err)
	}
	var ge *GenerationError
	if !errors.As(err, &ge) || ge.Stage != "group" {
		t.Fatalf("expected group stage attribution, got %v", err)
	}
}

func TestSummarizeReusesExistingSummary(t *testing.T) {
	entries := testEntries(2)
	entries[0].ExistingSummary = "previously stored summary"

	fake := &fakeClient{}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 2, Concurrency: 1})

	tree, err := agg.Summarize(context.Background(), entries)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if tree.Nodes[0].SummaryText != "previously stored summary" {
		t.Fatalf("existing summary must be reused verbatim, got %q", tree.Nodes[0].SummaryText)
	}
	// 1 fresh individual + 1 group + 1 combined.
	if got := fake.callCount(); got != 3 {
		t.Fatalf("expected 3 generation calls, got %d", got)
	}
}

func TestSummarizeCancellationIsAtomic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeClient{fn: func(in GenerateInput) (Generation, error) {
		cancel()
		return Generation{SummaryText: "late result", WordCount: 2}, nil
	}}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 2, Concurrency: 1})

	tree, err := agg.Summarize(ctx, testEntries(3))
	if err == nil {
		t.Fatal("cancelled aggregation must not return a tree")
	}
	if tree != nil {
		t.Fatal("no partial tree on cancellation")
	}
}

func TestSummarizeBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	fake := &fakeClient{fn: func(in GenerateInput) (Generation, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return Generation{SummaryText: "ok day", WordCount: 2}, nil
	}}
	agg := newTestAggregator(t, fake, AggregatorConfig{GroupSize: 5, Concurrency: 2})

	if _, err := agg.Summarize(context.Background(), testEntries(8)); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("peak in-flight generations %d exceeds limit 2", p)
	}
}
