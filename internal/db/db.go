package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	types "github.com/quillhaven/journal-backend/internal/domain"
	"github.com/quillhaven/journal-backend/internal/platform/envutil"
	"github.com/quillhaven/journal-backend/internal/platform/logger"
)

// Service owns the gorm handle. DB_DRIVER=sqlite switches to a local file
// database for development; everything else connects to Postgres.
type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := envutil.Str("DB_DRIVER", "postgres")
	switch driver {
	case "sqlite":
		return newSQLiteService(serviceLog)
	case "postgres":
		return newPostgresService(serviceLog)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func newPostgresService(log *logger.Logger) (*Service, error) {
	host := envutil.Str("POSTGRES_HOST", "localhost")
	port := envutil.Str("POSTGRES_PORT", "5432")
	user := envutil.Str("POSTGRES_USER", "postgres")
	password := envutil.Str("POSTGRES_PASSWORD", "")
	name := envutil.Str("POSTGRES_NAME", "quillhaven")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &Service{db: db, driver: "postgres", log: log}, nil
}

func newSQLiteService(log *logger.Logger) (*Service, error) {
	path := envutil.Str("SQLITE_PATH", "quillhaven.db")

	log.Info("Opening SQLite database...", "path", path)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to open SQLite database", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &Service{db: db, driver: "sqlite", log: log}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.JournalEntry{},
		&types.EntryVersion{},
		&types.EntryShare{},
		&types.EntrySummary{},
		&types.AuditLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}

	// SQLite does not support ALTER TABLE ... ADD CONSTRAINT.
	if s.driver != "postgres" {
		return nil
	}

	s.log.Info("Configuring foreign key relationships...")
	constraints := []struct {
		name string
		stmt string
	}{
		{
			name: "fk_user_token_user_id",
			stmt: `ALTER TABLE "user_token"
				ADD CONSTRAINT "fk_user_token_user_id"
				FOREIGN KEY ("user_id")
				REFERENCES "user"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_journal_entry_owner_id",
			stmt: `ALTER TABLE "journal_entry"
				ADD CONSTRAINT "fk_journal_entry_owner_id"
				FOREIGN KEY ("owner_id")
				REFERENCES "user"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_entry_version_entry_id",
			stmt: `ALTER TABLE "entry_version"
				ADD CONSTRAINT "fk_entry_version_entry_id"
				FOREIGN KEY ("entry_id")
				REFERENCES "journal_entry"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_entry_share_entry_id",
			stmt: `ALTER TABLE "entry_share"
				ADD CONSTRAINT "fk_entry_share_entry_id"
				FOREIGN KEY ("entry_id")
				REFERENCES "journal_entry"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_entry_summary_entry_id",
			stmt: `ALTER TABLE "entry_summary"
				ADD CONSTRAINT "fk_entry_summary_entry_id"
				FOREIGN KEY ("entry_id")
				REFERENCES "journal_entry"("id")
				ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		exists, err := s.constraintExists(c.name)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *Service) constraintExists(name string) (bool, error) {
	var count int64
	err := s.db.Raw(
		`SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_name = ?`,
		name,
	).Scan(&count).Error
	return count > 0, err
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
