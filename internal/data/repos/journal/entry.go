package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type EntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) (*types.JournalEntry, error)
	GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.JournalEntry, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.JournalEntry, error)
	// ListAccessible returns, ordered by created_at ascending, the subset of
	// entryIDs the requester may read: entries they own plus entries shared
	// with them through an unrevoked, unexpired share.
	ListAccessible(ctx context.Context, tx *gorm.DB, requesterID uuid.UUID, entryIDs []uuid.UUID) ([]*types.JournalEntry, error)
	Update(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "EntryRepo")}
}

func (r *entryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) (*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *entryRepo) GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var entry types.JournalEntry
	if err := transaction.WithContext(ctx).
		Where("id = ?", entryID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.JournalEntry
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entryRepo) ListAccessible(ctx context.Context, tx *gorm.DB, requesterID uuid.UUID, entryIDs []uuid.UUID) ([]*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.JournalEntry
	if len(entryIDs) == 0 {
		return results, nil
	}

	now := time.Now().UTC()
	shared := transaction.
		Model(&types.EntryShare{}).
		Select("entry_id").
		Where("grantee_id = ?", requesterID).
		Where("revoked_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", now)

	if err := transaction.WithContext(ctx).
		Where("id IN ?", entryIDs).
		Where("owner_id = ? OR id IN (?)", requesterID, shared).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entryRepo) Update(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(entry).Error
}

func (r *entryRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, entryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entryIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", entryIDs).
		Delete(&types.JournalEntry{}).Error
}
