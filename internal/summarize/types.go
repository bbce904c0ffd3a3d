package summarize

import (
	"time"

	"github.com/google/uuid"
)

type SummaryLevel string

const (
	LevelIndividual SummaryLevel = "individual"
	LevelGroup      SummaryLevel = "group"
	LevelCombined   SummaryLevel = "combined"
)

// HierarchyLevels is fixed: individual, group, combined.
const HierarchyLevels = 3

// Entry is one accessible journal entry as supplied by the entry store,
// already filtered to what the requester may read and ordered by creation
// time ascending.
type Entry struct {
	ID              uuid.UUID
	Title           string
	Content         any // rich-text Node tree, raw jsonb, or plain string
	ExistingSummary string
	Mood            string
	Tags            []string
	CreatedAt       time.Time
}

// EntrySummaryUnit is the atomic entry-scoped summarization result. The
// caller owns persistence; the pipeline never caches these.
type EntrySummaryUnit struct {
	EntryID     uuid.UUID `json:"entry_id"`
	SummaryText string    `json:"summary_text"`
	WordCount   int       `json:"word_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SummaryNode struct {
	Level          SummaryLevel `json:"level"`
	SummaryText    string       `json:"summary_text"`
	WordCount      int          `json:"word_count"`
	SourceEntryIDs []uuid.UUID  `json:"source_entry_ids"`
	DateRange      *DateRange   `json:"date_range,omitempty"`
}

// SummaryTree lists nodes in generation order: all individuals (entry
// order), then all groups (batch order), then the single combined node.
type SummaryTree struct {
	Nodes           []SummaryNode `json:"nodes"`
	TotalEntries    int           `json:"total_entries"`
	HierarchyLevels int           `json:"hierarchy_levels"`
	DateRange       DateRange     `json:"date_range"`
}
