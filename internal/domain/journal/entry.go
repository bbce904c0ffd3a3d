package journal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JournalEntry holds the current snapshot of one entry. ContentJSON stores
// the rich-text node tree; edits never mutate it in place, they bump
// CurrentVersion and append an EntryVersion row.
type JournalEntry struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	Title       string         `gorm:"not null" json:"title"`
	ContentJSON datatypes.JSON `gorm:"column:content_json;type:jsonb;not null;default:'{}'" json:"content_json"`
	Mood        *string        `gorm:"type:text" json:"mood,omitempty"`
	Tags        datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`

	CurrentVersion int `gorm:"not null;default:1" json:"current_version"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (JournalEntry) TableName() string { return "journal_entry" }

// EntryVersion is an immutable content snapshot taken before each edit.
type EntryVersion struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntryID uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_version,unique" json:"entry_id"`
	Version int       `gorm:"not null;index:idx_entry_version,unique" json:"version"`

	Title       string         `gorm:"not null" json:"title"`
	ContentJSON datatypes.JSON `gorm:"column:content_json;type:jsonb;not null;default:'{}'" json:"content_json"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EntryVersion) TableName() string { return "entry_version" }

// EntryShare grants a grantee read access until revoked or expired.
type EntryShare struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"entry_id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	GranteeID uuid.UUID `gorm:"type:uuid;not null;index" json:"grantee_id"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (EntryShare) TableName() string { return "entry_share" }

// EntrySummary caches the accepted individual summary for an entry, keyed by
// the content hash of its redacted text.
type EntrySummary struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntryID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"entry_id"`
	ContentHash string    `gorm:"not null;index" json:"content_hash"`
	SummaryText string    `gorm:"type:text;not null" json:"summary_text"`
	WordCount   int       `gorm:"not null;default:0" json:"word_count"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (EntrySummary) TableName() string { return "entry_summary" }

// AuditLog records fire-and-forget audit events. Details holds structured
// context (content hashes, counts), never entry text.
type AuditLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action       string         `gorm:"not null;index" json:"action"`
	ResourceType string         `gorm:"not null" json:"resource_type"`
	ResourceID   string         `gorm:"not null;index" json:"resource_id"`
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
