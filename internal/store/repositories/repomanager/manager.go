package repomanager

import (
	"context"
	"database/sql"

	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/repositories/labels"
	"github.com/optitask/backend/internal/store/repositories/projects"
	"github.com/optitask/backend/internal/store/repositories/tasklabels"
	"github.com/optitask/backend/internal/store/repositories/tasks"
	"github.com/optitask/backend/internal/store/repositories/timeentries"
)

type RepositoryManager interface {
	MigrateUp(ctx context.Context, db *sql.DB) error
	MigrateDown(ctx context.Context, db *sql.DB) error
	MigrationStatus(ctx context.Context, db *sql.DB) error

	Projects(db dbx.DBTX) projects.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Labels(db dbx.DBTX) labels.Repository
	TaskLabels(db dbx.DBTX) tasklabels.Repository
	TimeEntries(db dbx.DBTX) timeentries.Repository
}
