package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type EntrySummaryRepo interface {
	GetByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) ([]*types.EntrySummary, error)
	// Upsert replaces the cached summary for an entry, keyed by entry_id.
	Upsert(ctx context.Context, tx *gorm.DB, summary *types.EntrySummary) error
	DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error
}

type entrySummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntrySummaryRepo(db *gorm.DB, baseLog *logger.Logger) EntrySummaryRepo {
	return &entrySummaryRepo{db: db, log: baseLog.With("repo", "EntrySummaryRepo")}
}

func (r *entrySummaryRepo) GetByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) ([]*types.EntrySummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntrySummary
	if len(entryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("entry_id IN ?", entryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entrySummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, summary *types.EntrySummary) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	summary.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content_hash", "summary_text", "word_count", "updated_at"}),
		}).
		Create(summary).Error
}

func (r *entrySummaryRepo) DeleteByEntryIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entryIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("entry_id IN ?", entryIDs).
		Delete(&types.EntrySummary{}).Error
}
