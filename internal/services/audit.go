package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/quillhaven/journal-backend/internal/data/repos"
	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

// AuditService records who did what to which resource. Recording is
// best effort: a failed write is logged and never propagated, so audit
// problems cannot fail the operation being audited. Details must hold
// structured metadata only (ids, hashes, counts), never entry text.
type AuditService interface {
	Record(ctx context.Context, actorID uuid.UUID, action, resourceType, resourceID string, details map[string]any)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*types.AuditLog, error)
}

type auditService struct {
	log          *logger.Logger
	auditLogRepo repos.AuditLogRepo
}

func NewAuditService(log *logger.Logger, auditLogRepo repos.AuditLogRepo) AuditService {
	return &auditService{
		log:          log.With("service", "AuditService"),
		auditLogRepo: auditLogRepo,
	}
}

func (s *auditService) Record(ctx context.Context, actorID uuid.UUID, action, resourceType, resourceID string, details map[string]any) {
	var raw datatypes.JSON
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			s.log.Warn("Failed to marshal audit details", "action", action, "error", err)
		} else {
			raw = datatypes.JSON(b)
		}
	}

	record := &types.AuditLog{
		ID:           uuid.New(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      raw,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.auditLogRepo.Create(ctx, nil, record); err != nil {
		s.log.Warn("Failed to record audit event", "action", action, "resource_type", resourceType, "error", err)
	}
}

func (s *auditService) ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*types.AuditLog, error) {
	return s.auditLogRepo.ListByActor(ctx, nil, actorID, limit)
}
