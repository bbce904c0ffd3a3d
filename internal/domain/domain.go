package domain

import (
	"github.com/quillhaven/journal-backend/internal/domain/auth"
	"github.com/quillhaven/journal-backend/internal/domain/journal"
	"github.com/quillhaven/journal-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type JournalEntry = journal.JournalEntry
type EntryVersion = journal.EntryVersion
type EntryShare = journal.EntryShare
type EntrySummary = journal.EntrySummary
type AuditLog = journal.AuditLog
