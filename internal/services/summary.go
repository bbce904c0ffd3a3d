package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/quillhaven/journal-backend/internal/clients/redis"
	"github.com/quillhaven/journal-backend/internal/content"
	"github.com/quillhaven/journal-backend/internal/data/repos"
	types "github.com/quillhaven/journal-backend/internal/domain"
	apperrors "github.com/quillhaven/journal-backend/internal/pkg/errors"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
	"github.com/quillhaven/journal-backend/internal/summarize"
)

type SummarizeRequest struct {
	EntryIDs []uuid.UUID `json:"entry_ids"`
	// Persist opts in to caching accepted individual summaries server side.
	Persist bool `json:"persist"`
}

type SummaryResult struct {
	Tree        *summarize.SummaryTree `json:"tree"`
	GeneratedAt time.Time              `json:"generated_at"`
	FromCache   bool                   `json:"from_cache"`
}

type SummaryService interface {
	Summarize(ctx context.Context, requesterID uuid.UUID, req SummarizeRequest) (*SummaryResult, error)
}

type summaryService struct {
	log              *logger.Logger
	entryRepo        repos.EntryRepo
	entrySummaryRepo repos.EntrySummaryRepo
	pipeline         *content.Pipeline
	aggregator       *summarize.Aggregator
	cache            redisclient.SummaryCache
	auditService     AuditService
	maxTextLength    int
}

func NewSummaryService(
	log *logger.Logger,
	entryRepo repos.EntryRepo,
	entrySummaryRepo repos.EntrySummaryRepo,
	pipeline *content.Pipeline,
	aggregator *summarize.Aggregator,
	cache redisclient.SummaryCache,
	auditService AuditService,
	maxTextLength int,
) SummaryService {
	return &summaryService{
		log:              log.With("service", "SummaryService"),
		entryRepo:        entryRepo,
		entrySummaryRepo: entrySummaryRepo,
		pipeline:         pipeline,
		aggregator:       aggregator,
		cache:            cache,
		auditService:     auditService,
		maxTextLength:    maxTextLength,
	}
}

func (s *summaryService) Summarize(ctx context.Context, requesterID uuid.UUID, req SummarizeRequest) (*SummaryResult, error) {
	if len(req.EntryIDs) < 2 {
		return nil, fmt.Errorf("%w: at least 2 entries are required", apperrors.ErrInsufficientEntries)
	}

	// Access control happens here, once. Everything downstream sees only
	// entries the requester may read.
	rows, err := s.entryRepo.ListAccessible(ctx, nil, requesterID, req.EntryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 of the requested entries are accessible", apperrors.ErrInsufficientEntries)
	}

	entries, hashByEntry := s.buildEntries(rows)
	cacheKey := s.treeCacheKey(hashByEntry, entries)

	if s.cache != nil {
		tree, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.log.Warn("Summary cache read failed", "error", err)
		} else if ok {
			s.auditService.Record(ctx, requesterID, "summary.generate", "summary_tree", cacheKey, map[string]any{
				"entry_count": len(entries),
				"from_cache":  true,
			})
			return &SummaryResult{Tree: tree, GeneratedAt: time.Now().UTC(), FromCache: true}, nil
		}
	}

	s.attachExistingSummaries(ctx, entries, hashByEntry)

	tree, err := s.aggregator.Summarize(ctx, entries)
	if err != nil {
		return nil, err
	}

	if req.Persist {
		s.persistIndividuals(ctx, tree, hashByEntry)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, tree); err != nil {
			s.log.Warn("Summary cache write failed", "error", err)
		}
	}

	s.auditService.Record(ctx, requesterID, "summary.generate", "summary_tree", cacheKey, map[string]any{
		"entry_count": len(entries),
		"from_cache":  false,
	})
	return &SummaryResult{Tree: tree, GeneratedAt: time.Now().UTC(), FromCache: false}, nil
}

// buildEntries converts stored rows into pipeline entries and computes each
// entry's content hash up front so cache keys and persistence agree on it.
func (s *summaryService) buildEntries(rows []*types.JournalEntry) ([]summarize.Entry, map[uuid.UUID]string) {
	entries := make([]summarize.Entry, 0, len(rows))
	hashByEntry := make(map[uuid.UUID]string, len(rows))

	for _, row := range rows {
		var doc any = string(row.ContentJSON)
		if parsed, err := content.ParseDocument(row.ContentJSON); err == nil {
			doc = parsed
		}

		var tags []string
		if len(row.Tags) > 0 {
			if err := json.Unmarshal(row.Tags, &tags); err != nil {
				s.log.Warn("Failed to decode entry tags", "entry_id", row.ID, "error", err)
			}
		}
		mood := ""
		if row.Mood != nil {
			mood = *row.Mood
		}

		entries = append(entries, summarize.Entry{
			ID:        row.ID,
			Title:     row.Title,
			Content:   doc,
			Mood:      mood,
			Tags:      tags,
			CreatedAt: row.CreatedAt,
		})
		hashByEntry[row.ID] = s.pipeline.PrepareForAI(doc, s.maxTextLength).ContentHash
	}
	return entries, hashByEntry
}

// attachExistingSummaries reuses a stored individual summary only when its
// content hash still matches the entry's current redacted text.
func (s *summaryService) attachExistingSummaries(ctx context.Context, entries []summarize.Entry, hashByEntry map[uuid.UUID]string) {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	stored, err := s.entrySummaryRepo.GetByEntryIDs(ctx, nil, ids)
	if err != nil {
		s.log.Warn("Failed to load stored entry summaries", "error", err)
		return
	}

	byEntry := make(map[uuid.UUID]*types.EntrySummary, len(stored))
	for _, summary := range stored {
		byEntry[summary.EntryID] = summary
	}
	for i := range entries {
		summary, ok := byEntry[entries[i].ID]
		if !ok {
			continue
		}
		if summary.ContentHash != hashByEntry[entries[i].ID] {
			continue
		}
		entries[i].ExistingSummary = summary.SummaryText
	}
}

func (s *summaryService) persistIndividuals(ctx context.Context, tree *summarize.SummaryTree, hashByEntry map[uuid.UUID]string) {
	for _, node := range tree.Nodes {
		if node.Level != summarize.LevelIndividual || len(node.SourceEntryIDs) != 1 {
			continue
		}
		entryID := node.SourceEntryIDs[0]
		hash, ok := hashByEntry[entryID]
		if !ok {
			continue
		}
		err := s.entrySummaryRepo.Upsert(ctx, nil, &types.EntrySummary{
			ID:          uuid.New(),
			EntryID:     entryID,
			ContentHash: hash,
			SummaryText: node.SummaryText,
			WordCount:   node.WordCount,
		})
		if err != nil {
			s.log.Warn("Failed to persist entry summary", "entry_id", entryID, "error", err)
		}
	}
}

// treeCacheKey derives a stable key from the per-entry content hashes, so
// any content change or a different entry set misses the cache.
func (s *summaryService) treeCacheKey(hashByEntry map[uuid.UUID]string, entries []summarize.Entry) string {
	hashes := make([]string, 0, len(entries))
	for _, e := range entries {
		hashes = append(hashes, hashByEntry[e.ID])
	}
	sort.Strings(hashes)
	return content.Hash(strings.Join(hashes, "|") + "|" + strconv.Itoa(len(hashes)))
}
