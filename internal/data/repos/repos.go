package repos

import (
	"gorm.io/gorm"

	"github.com/quillhaven/journal-backend/internal/data/repos/auth"
	"github.com/quillhaven/journal-backend/internal/data/repos/journal"
	"github.com/quillhaven/journal-backend/internal/data/repos/user"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type EntryRepo = journal.EntryRepo
type EntryVersionRepo = journal.EntryVersionRepo
type EntryShareRepo = journal.EntryShareRepo
type EntrySummaryRepo = journal.EntrySummaryRepo
type AuditLogRepo = journal.AuditLogRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return journal.NewEntryRepo(db, baseLog)
}
func NewEntryVersionRepo(db *gorm.DB, baseLog *logger.Logger) EntryVersionRepo {
	return journal.NewEntryVersionRepo(db, baseLog)
}
func NewEntryShareRepo(db *gorm.DB, baseLog *logger.Logger) EntryShareRepo {
	return journal.NewEntryShareRepo(db, baseLog)
}
func NewEntrySummaryRepo(db *gorm.DB, baseLog *logger.Logger) EntrySummaryRepo {
	return journal.NewEntrySummaryRepo(db, baseLog)
}
func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return journal.NewAuditLogRepo(db, baseLog)
}
