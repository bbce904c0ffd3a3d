package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quillhaven/journal-backend/internal/content"
	"github.com/quillhaven/journal-backend/internal/data/repos"
	types "github.com/quillhaven/journal-backend/internal/domain"
	apperrors "github.com/quillhaven/journal-backend/internal/pkg/errors"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type CreateEntryInput struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
	Mood    *string         `json:"mood,omitempty"`
	Tags    []string        `json:"tags,omitempty"`
}

type UpdateEntryInput struct {
	Title   *string         `json:"title,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	Mood    *string         `json:"mood,omitempty"`
	Tags    []string        `json:"tags,omitempty"`
}

type ShareEntryInput struct {
	GranteeEmail string     `json:"grantee_email"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type EntryService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateEntryInput) (*types.JournalEntry, error)
	Get(ctx context.Context, requesterID, entryID uuid.UUID) (*types.JournalEntry, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.JournalEntry, error)
	Update(ctx context.Context, requesterID, entryID uuid.UUID, input UpdateEntryInput) (*types.JournalEntry, error)
	Delete(ctx context.Context, requesterID, entryID uuid.UUID) error
	ListVersions(ctx context.Context, requesterID, entryID uuid.UUID) ([]*types.EntryVersion, error)
	Share(ctx context.Context, ownerID, entryID uuid.UUID, input ShareEntryInput) (*types.EntryShare, error)
	RevokeShare(ctx context.Context, ownerID, entryID, shareID uuid.UUID) error
}

type entryService struct {
	db               *gorm.DB
	log              *logger.Logger
	entryRepo        repos.EntryRepo
	entryVersionRepo repos.EntryVersionRepo
	entryShareRepo   repos.EntryShareRepo
	entrySummaryRepo repos.EntrySummaryRepo
	userRepo         repos.UserRepo
	auditService     AuditService
}

func NewEntryService(
	db *gorm.DB,
	log *logger.Logger,
	entryRepo repos.EntryRepo,
	entryVersionRepo repos.EntryVersionRepo,
	entryShareRepo repos.EntryShareRepo,
	entrySummaryRepo repos.EntrySummaryRepo,
	userRepo repos.UserRepo,
	auditService AuditService,
) EntryService {
	return &entryService{
		db:               db,
		log:              log.With("service", "EntryService"),
		entryRepo:        entryRepo,
		entryVersionRepo: entryVersionRepo,
		entryShareRepo:   entryShareRepo,
		entrySummaryRepo: entrySummaryRepo,
		userRepo:         userRepo,
		auditService:     auditService,
	}
}

func (s *entryService) Create(ctx context.Context, ownerID uuid.UUID, input CreateEntryInput) (*types.JournalEntry, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidArgument)
	}
	contentJSON, err := normalizeContent(input.Content)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := marshalTags(input.Tags)
	if err != nil {
		return nil, err
	}

	entry := &types.JournalEntry{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          input.Title,
		ContentJSON:    contentJSON,
		Mood:           input.Mood,
		Tags:           tagsJSON,
		CurrentVersion: 1,
	}
	created, err := s.entryRepo.Create(ctx, nil, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.auditService.Record(ctx, ownerID, "entry.create", "journal_entry", created.ID.String(), nil)
	return created, nil
}

func (s *entryService) Get(ctx context.Context, requesterID, entryID uuid.UUID) (*types.JournalEntry, error) {
	entries, err := s.entryRepo.ListAccessible(ctx, nil, requesterID, []uuid.UUID{entryID})
	if err != nil {
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return entries[0], nil
}

func (s *entryService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.JournalEntry, error) {
	return s.entryRepo.ListByOwner(ctx, nil, ownerID)
}

func (s *entryService) Update(ctx context.Context, requesterID, entryID uuid.UUID, input UpdateEntryInput) (*types.JournalEntry, error) {
	var updated *types.JournalEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.entryRepo.GetByID(ctx, tx, entryID)
		if err != nil {
			return apperrors.ErrNotFound
		}
		// Only the owner may edit; shared access is read-only.
		if entry.OwnerID != requesterID {
			return apperrors.ErrNotFound
		}

		// Snapshot the current content before mutating it.
		snapshot := &types.EntryVersion{
			ID:          uuid.New(),
			EntryID:     entry.ID,
			Version:     entry.CurrentVersion,
			Title:       entry.Title,
			ContentJSON: entry.ContentJSON,
		}
		if _, err := s.entryVersionRepo.Create(ctx, tx, snapshot); err != nil {
			return fmt.Errorf("failed to snapshot entry version: %w", err)
		}

		if input.Title != nil {
			entry.Title = *input.Title
		}
		if input.Content != nil {
			contentJSON, err := normalizeContent(input.Content)
			if err != nil {
				return err
			}
			entry.ContentJSON = contentJSON
		}
		if input.Mood != nil {
			entry.Mood = input.Mood
		}
		if input.Tags != nil {
			tagsJSON, err := marshalTags(input.Tags)
			if err != nil {
				return err
			}
			entry.Tags = tagsJSON
		}
		entry.CurrentVersion++
		entry.UpdatedAt = time.Now().UTC()

		if err := s.entryRepo.Update(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		// Cached summaries describe the old content.
		if err := s.entrySummaryRepo.DeleteByEntryIDs(ctx, tx, []uuid.UUID{entry.ID}); err != nil {
			return fmt.Errorf("failed to drop stale entry summary: %w", err)
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, requesterID, "entry.update", "journal_entry", entryID.String(), map[string]any{
		"version": updated.CurrentVersion,
	})
	return updated, nil
}

func (s *entryService) Delete(ctx context.Context, requesterID, entryID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.entryRepo.GetByID(ctx, tx, entryID)
		if err != nil {
			return apperrors.ErrNotFound
		}
		if entry.OwnerID != requesterID {
			return apperrors.ErrNotFound
		}
		if err := s.entrySummaryRepo.DeleteByEntryIDs(ctx, tx, []uuid.UUID{entryID}); err != nil {
			return fmt.Errorf("failed to drop entry summary: %w", err)
		}
		return s.entryRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{entryID})
	})
	if err != nil {
		return err
	}

	s.auditService.Record(ctx, requesterID, "entry.delete", "journal_entry", entryID.String(), nil)
	return nil
}

func (s *entryService) ListVersions(ctx context.Context, requesterID, entryID uuid.UUID) ([]*types.EntryVersion, error) {
	entry, err := s.entryRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	// Version history is owner-only; shares expose current content only.
	if entry.OwnerID != requesterID {
		return nil, apperrors.ErrNotFound
	}
	return s.entryVersionRepo.ListByEntryID(ctx, nil, entryID)
}

func (s *entryService) Share(ctx context.Context, ownerID, entryID uuid.UUID, input ShareEntryInput) (*types.EntryShare, error) {
	entry, err := s.entryRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if entry.OwnerID != ownerID {
		return nil, apperrors.ErrNotFound
	}

	grantee, err := s.userRepo.GetByEmail(ctx, nil, input.GranteeEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: no user with that email", apperrors.ErrInvalidArgument)
	}
	if grantee.ID == ownerID {
		return nil, fmt.Errorf("%w: cannot share an entry with yourself", apperrors.ErrInvalidArgument)
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", apperrors.ErrInvalidArgument)
	}

	share := &types.EntryShare{
		ID:        uuid.New(),
		EntryID:   entryID,
		OwnerID:   ownerID,
		GranteeID: grantee.ID,
		ExpiresAt: input.ExpiresAt,
	}
	created, err := s.entryShareRepo.Create(ctx, nil, share)
	if err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.auditService.Record(ctx, ownerID, "entry.share", "journal_entry", entryID.String(), map[string]any{
		"share_id": created.ID.String(),
	})
	return created, nil
}

func (s *entryService) RevokeShare(ctx context.Context, ownerID, entryID, shareID uuid.UUID) error {
	shares, err := s.entryShareRepo.ListByEntryID(ctx, nil, entryID)
	if err != nil {
		return fmt.Errorf("failed to list shares: %w", err)
	}
	for _, share := range shares {
		if share.ID != shareID {
			continue
		}
		if share.OwnerID != ownerID {
			return apperrors.ErrNotFound
		}
		if err := s.entryShareRepo.Revoke(ctx, nil, shareID); err != nil {
			return fmt.Errorf("failed to revoke share: %w", err)
		}
		s.auditService.Record(ctx, ownerID, "entry.share.revoke", "journal_entry", entryID.String(), map[string]any{
			"share_id": shareID.String(),
		})
		return nil
	}
	return apperrors.ErrNotFound
}

// normalizeContent proves the payload is a parseable rich-text document
// before it is stored. Malformed trees are rejected here rather than at
// summary time.
func normalizeContent(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrInvalidArgument)
	}
	if _, err := content.ParseDocument([]byte(raw)); err != nil {
		return nil, fmt.Errorf("%w: malformed content document", apperrors.ErrInvalidArgument)
	}
	return datatypes.JSON(raw), nil
}

func marshalTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return datatypes.JSON(b), nil
}
