// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/migrations"
	"github.com/optitask/backend/internal/store/repositories/labels"
	"github.com/optitask/backend/internal/store/repositories/projects"
	"github.com/optitask/backend/internal/store/repositories/tasklabels"
	"github.com/optitask/backend/internal/store/repositories/tasks"
	"github.com/optitask/backend/internal/store/repositories/timeentries"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes the schema migration hooks.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Projects returns a projects.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

// Tasks returns a tasks.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

// Labels returns a labels.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Labels(db dbx.DBTX) labels.Repository {
	return labels.NewPostgresRepository(db)
}

// TaskLabels returns a tasklabels.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) TaskLabels(db dbx.DBTX) tasklabels.Repository {
	return tasklabels.NewPostgresRepository(db)
}

// TimeEntries returns a timeentries.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) TimeEntries(db dbx.DBTX) timeentries.Repository {
	return timeentries.NewPostgresRepository(db)
}

// Seams for testing the goose calls.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseDownContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.DownContext(ctx, db, dir, opts...)
	}
	gooseStatusContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.StatusContext(ctx, db, dir, opts...)
	}
)

func setupGoose() {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
}

// MigrateUp applies all pending embedded migrations in order.
func (m *PostgresRepositoryManager) MigrateUp(ctx context.Context, db *sql.DB) error {
	setupGoose()
	return gooseUpContext(ctx, db, ".")
}

// MigrateDown rolls back the most recently applied migration.
func (m *PostgresRepositoryManager) MigrateDown(ctx context.Context, db *sql.DB) error {
	setupGoose()
	return gooseDownContext(ctx, db, ".")
}

// MigrationStatus prints the apply state of every embedded migration.
func (m *PostgresRepositoryManager) MigrationStatus(ctx context.Context, db *sql.DB) error {
	setupGoose()
	return gooseStatusContext(ctx, db, ".")
}
