package journal

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type AuditLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.AuditLog) error
	ListByActor(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, limit int) ([]*types.AuditLog, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(ctx context.Context, tx *gorm.DB, record *types.AuditLog) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Create(record).Error
}

func (r *auditLogRepo) ListByActor(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, limit int) ([]*types.AuditLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 100
	}

	var results []*types.AuditLog
	if err := transaction.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
