package journal

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type EntryVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, version *types.EntryVersion) (*types.EntryVersion, error)
	ListByEntryID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.EntryVersion, error)
	GetByEntryAndVersion(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, version int) (*types.EntryVersion, error)
}

type entryVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryVersionRepo(db *gorm.DB, baseLog *logger.Logger) EntryVersionRepo {
	return &entryVersionRepo{db: db, log: baseLog.With("repo", "EntryVersionRepo")}
}

func (r *entryVersionRepo) Create(ctx context.Context, tx *gorm.DB, version *types.EntryVersion) (*types.EntryVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

func (r *entryVersionRepo) ListByEntryID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.EntryVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntryVersion
	if err := transaction.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entryVersionRepo) GetByEntryAndVersion(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, version int) (*types.EntryVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.EntryVersion
	if err := transaction.WithContext(ctx).
		Where("entry_id = ? AND version = ?", entryID, version).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
