package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type EntryShareRepo interface {
	Create(ctx context.Context, tx *gorm.DB, share *types.EntryShare) (*types.EntryShare, error)
	ListByEntryID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.EntryShare, error)
	ListActiveByGrantee(ctx context.Context, tx *gorm.DB, granteeID uuid.UUID) ([]*types.EntryShare, error)
	Revoke(ctx context.Context, tx *gorm.DB, shareID uuid.UUID) error
}

type entryShareRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryShareRepo(db *gorm.DB, baseLog *logger.Logger) EntryShareRepo {
	return &entryShareRepo{db: db, log: baseLog.With("repo", "EntryShareRepo")}
}

func (r *entryShareRepo) Create(ctx context.Context, tx *gorm.DB, share *types.EntryShare) (*types.EntryShare, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(share).Error; err != nil {
		return nil, err
	}
	return share, nil
}

func (r *entryShareRepo) ListByEntryID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.EntryShare, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntryShare
	if err := transaction.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entryShareRepo) ListActiveByGrantee(ctx context.Context, tx *gorm.DB, granteeID uuid.UUID) ([]*types.EntryShare, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EntryShare
	now := time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Where("grantee_id = ?", granteeID).
		Where("revoked_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *entryShareRepo) Revoke(ctx context.Context, tx *gorm.DB, shareID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.EntryShare{}).
		Where("id = ? AND revoked_at IS NULL", shareID).
		Update("revoked_at", now).Error
}
