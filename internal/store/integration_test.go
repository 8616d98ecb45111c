package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/optitask/backend/internal/common"
	"github.com/optitask/backend/internal/dbx"
	"github.com/optitask/backend/internal/store/models"
	"github.com/optitask/backend/internal/store/repositories/repomanager"
	"github.com/optitask/backend/internal/store/session"
)

// startDatabase brings up a disposable PostgreSQL server, applies every
// embedded migration and prepares a non-superuser role. Superusers and table
// owners bypass row-level security, so the policy tests below must run under
// app_client instead of the login role.
func startDatabase(t *testing.T, ctx context.Context) *sql.DB {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:17",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.PingContext(ctx))

	require.NoError(t, repomanager.NewPostgresRepositoryManager().MigrateUp(ctx, db))

	_, err = db.ExecContext(ctx, `CREATE ROLE app_client NOLOGIN`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `GRANT USAGE ON SCHEMA public TO app_client`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO app_client`)
	require.NoError(t, err)

	return db
}

// bindAs checks out a dedicated connection, drops superuser powers and
// installs the caller identity the policies read.
func bindAs(t *testing.T, ctx context.Context, db *sql.DB, userID uuid.UUID) *sql.Conn {
	t.Helper()

	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `SET ROLE app_client`)
	require.NoError(t, err)
	require.NoError(t, session.Bind(ctx, conn, userID))

	t.Cleanup(func() {
		// scrub session state before the connection rejoins the pool
		conn.ExecContext(ctx, `RESET ROLE`)
		conn.ExecContext(ctx, `SELECT set_config($1, '', false)`, session.Setting)
		conn.Close()
	})
	return conn
}

func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := startDatabase(t, ctx)
	manager := repomanager.NewPostgresRepositoryManager()

	alice := uuid.New()
	bob := uuid.New()

	t.Run("OwnerScopedVisibility", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		bobConn := bindAs(t, ctx, db, bob)

		project, err := manager.Projects(aliceConn).Create(ctx, &models.Project{UserID: alice, Name: "Research"})
		require.NoError(t, err)
		task, err := manager.Tasks(aliceConn).Create(ctx, &models.Task{UserID: alice, ProjectID: &project.ID, Title: "Read paper"})
		require.NoError(t, err)
		label, err := manager.Labels(aliceConn).Create(ctx, &models.Label{UserID: alice, Name: "visible"})
		require.NoError(t, err)
		require.NoError(t, manager.TaskLabels(aliceConn).Attach(ctx, alice, task.ID, label.ID))
		// a project-less task so the entry stays out of the reporting joins
		loose, err := manager.Tasks(aliceConn).Create(ctx, &models.Task{UserID: alice, Title: "Untracked"})
		require.NoError(t, err)
		entry, err := manager.TimeEntries(aliceConn).Create(ctx, &models.TimeEntry{UserID: alice, TaskID: loose.ID, StartTime: time.Now().UTC()})
		require.NoError(t, err)

		got, err := manager.Projects(aliceConn).GetByID(ctx, alice, project.ID)
		require.NoError(t, err)
		require.Equal(t, "Research", got.Name)

		// the same rows simply do not exist for another identity,
		// on every table
		_, err = manager.Projects(bobConn).GetByID(ctx, bob, project.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
		_, err = manager.Tasks(bobConn).GetByID(ctx, bob, task.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
		_, err = manager.Labels(bobConn).GetByID(ctx, bob, label.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
		_, err = manager.TimeEntries(bobConn).GetByID(ctx, bob, entry.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
		_, err = manager.TaskLabels(bobConn).ListByTask(ctx, bob, task.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)

		page, err := manager.Tasks(bobConn).List(ctx, bob, models.TaskFilter{}, models.Page{})
		require.NoError(t, err)
		require.Empty(t, page.Items)
		require.Zero(t, page.TotalItems)

		// and they cannot be deleted out from under the owner either
		err = manager.Tasks(bobConn).Delete(ctx, bob, task.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
		got, err = manager.Projects(aliceConn).GetByID(ctx, alice, project.ID)
		require.NoError(t, err)
		require.Equal(t, "Research", got.Name)
	})

	t.Run("UnboundSessionSeesNothing", func(t *testing.T) {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		defer func() {
			conn.ExecContext(ctx, `RESET ROLE`)
			conn.Close()
		}()
		_, err = conn.ExecContext(ctx, `SET ROLE app_client`)
		require.NoError(t, err)

		list, err := manager.Projects(conn).List(ctx, alice)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("PoliciesBlockForeignWrites", func(t *testing.T) {
		bobConn := bindAs(t, ctx, db, bob)

		// inserting a row owned by somebody else violates WITH CHECK
		_, err := manager.Projects(bobConn).Create(ctx, &models.Project{UserID: alice, Name: "Sneaky"})
		require.Error(t, err)
	})

	t.Run("LabelNamesUniquePerUser", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		bobConn := bindAs(t, ctx, db, bob)

		_, err := manager.Labels(aliceConn).Create(ctx, &models.Label{UserID: alice, Name: "urgent"})
		require.NoError(t, err)
		_, err = manager.Labels(aliceConn).Create(ctx, &models.Label{UserID: alice, Name: "urgent"})
		require.ErrorIs(t, err, common.ErrorAlreadyExists)

		_, err = manager.Labels(bobConn).Create(ctx, &models.Label{UserID: bob, Name: "urgent"})
		require.NoError(t, err)
	})

	t.Run("ProjectDeleteDetachesTasks", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		projects := manager.Projects(aliceConn)
		tasks := manager.Tasks(aliceConn)

		project, err := projects.Create(ctx, &models.Project{UserID: alice, Name: "Doomed"})
		require.NoError(t, err)
		task, err := tasks.Create(ctx, &models.Task{UserID: alice, ProjectID: &project.ID, Title: "Orphan me"})
		require.NoError(t, err)

		require.NoError(t, projects.Delete(ctx, alice, project.ID))

		got, err := tasks.GetByID(ctx, alice, task.ID)
		require.NoError(t, err)
		require.Nil(t, got.ProjectID)
	})

	t.Run("TaskDeleteCascadesLinksAndEntries", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		tasks := manager.Tasks(aliceConn)
		labels := manager.Labels(aliceConn)
		links := manager.TaskLabels(aliceConn)
		entries := manager.TimeEntries(aliceConn)

		task, err := tasks.Create(ctx, &models.Task{UserID: alice, Title: "Short-lived"})
		require.NoError(t, err)
		label, err := labels.Create(ctx, &models.Label{UserID: alice, Name: "ephemeral"})
		require.NoError(t, err)
		require.NoError(t, links.Attach(ctx, alice, task.ID, label.ID))
		entry, err := entries.Create(ctx, &models.TimeEntry{UserID: alice, TaskID: task.ID, StartTime: time.Now().UTC()})
		require.NoError(t, err)

		require.NoError(t, tasks.Delete(ctx, alice, task.ID))

		_, err = entries.GetByID(ctx, alice, entry.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
		// the label itself survives, only the link goes
		_, err = labels.GetByID(ctx, alice, label.ID)
		require.NoError(t, err)
	})

	t.Run("LabelDeleteCascadesLinks", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		tasks := manager.Tasks(aliceConn)
		labels := manager.Labels(aliceConn)
		links := manager.TaskLabels(aliceConn)

		task, err := tasks.Create(ctx, &models.Task{UserID: alice, Title: "Keeps going"})
		require.NoError(t, err)
		label, err := labels.Create(ctx, &models.Label{UserID: alice, Name: "fleeting"})
		require.NoError(t, err)
		require.NoError(t, links.Attach(ctx, alice, task.ID, label.ID))

		require.NoError(t, labels.Delete(ctx, alice, label.ID))

		linked, err := links.ListByTask(ctx, alice, task.ID)
		require.NoError(t, err)
		require.Empty(t, linked)
	})

	t.Run("CrossUserAttachRejected", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		bobConn := bindAs(t, ctx, db, bob)

		task, err := manager.Tasks(aliceConn).Create(ctx, &models.Task{UserID: alice, Title: "Mine"})
		require.NoError(t, err)
		label, err := manager.Labels(bobConn).Create(ctx, &models.Label{UserID: bob, Name: "theirs"})
		require.NoError(t, err)

		err = manager.TaskLabels(aliceConn).Attach(ctx, alice, task.ID, label.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)

		// the dual-ownership policy catches the same write even when the
		// repository pre-checks are bypassed
		_, err = aliceConn.ExecContext(ctx,
			`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2)`, task.ID, label.ID)
		require.Error(t, err)
	})

	t.Run("UpdatedAtAdvancesOnUpdate", func(t *testing.T) {
		var project *models.Project
		err := session.RunAs(ctx, db, alice, func(ctx context.Context, tx dbx.DBTX) error {
			var err error
			project, err = manager.Projects(tx).Create(ctx, &models.Project{UserID: alice, Name: "Before"})
			return err
		})
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		err = session.RunAs(ctx, db, alice, func(ctx context.Context, tx dbx.DBTX) error {
			project.Name = "After"
			return manager.Projects(tx).Update(ctx, project)
		})
		require.NoError(t, err)
		require.True(t, project.UpdatedAt.After(project.CreatedAt),
			"updated_at %v must advance past created_at %v", project.UpdatedAt, project.CreatedAt)

		// a caller-supplied value is overwritten by the trigger
		aliceConn := bindAs(t, ctx, db, alice)
		var stamped time.Time
		err = aliceConn.QueryRowContext(ctx,
			`UPDATE projects SET updated_at = 'epoch' WHERE id = $1 RETURNING updated_at`,
			project.ID).Scan(&stamped)
		require.NoError(t, err)
		require.True(t, stamped.After(project.CreatedAt), "trigger must override supplied updated_at, got %v", stamped)

		// the trigger is installed per table; labels and time entries get
		// the same treatment
		label, err := manager.Labels(aliceConn).Create(ctx, &models.Label{UserID: alice, Name: "stamped"})
		require.NoError(t, err)
		err = aliceConn.QueryRowContext(ctx,
			`UPDATE labels SET updated_at = 'epoch' WHERE id = $1 RETURNING updated_at`,
			label.ID).Scan(&stamped)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now(), stamped, time.Minute,
			"trigger must override supplied updated_at on labels")

		task, err := manager.Tasks(aliceConn).Create(ctx, &models.Task{UserID: alice, Title: "Stamped"})
		require.NoError(t, err)
		entry, err := manager.TimeEntries(aliceConn).Create(ctx, &models.TimeEntry{UserID: alice, TaskID: task.ID, StartTime: time.Now().UTC()})
		require.NoError(t, err)
		err = aliceConn.QueryRowContext(ctx,
			`UPDATE time_entries SET updated_at = 'epoch' WHERE id = $1 RETURNING updated_at`,
			entry.ID).Scan(&stamped)
		require.NoError(t, err)
		require.WithinDuration(t, time.Now(), stamped, time.Minute,
			"trigger must override supplied updated_at on time entries")
	})

	t.Run("StopAndReportTrackedTime", func(t *testing.T) {
		aliceConn := bindAs(t, ctx, db, alice)
		tasks := manager.Tasks(aliceConn)
		projects := manager.Projects(aliceConn)
		entries := manager.TimeEntries(aliceConn)

		project, err := projects.Create(ctx, &models.Project{UserID: alice, Name: "Tracked"})
		require.NoError(t, err)
		task, err := tasks.Create(ctx, &models.Task{UserID: alice, ProjectID: &project.ID, Title: "Timed work"})
		require.NoError(t, err)

		start := time.Now().UTC().Add(-30 * time.Minute)
		entry, err := entries.Create(ctx, &models.TimeEntry{UserID: alice, TaskID: task.ID, StartTime: start})
		require.NoError(t, err)
		require.Nil(t, entry.DurationSeconds)

		stopped, err := entries.Stop(ctx, alice, entry.ID, start.Add(25*time.Minute))
		require.NoError(t, err)
		require.NotNil(t, stopped.DurationSeconds)
		require.Equal(t, int32(1500), *stopped.DurationSeconds)

		window := models.ReportingWindow{Start: start.Add(-time.Hour), End: time.Now().UTC()}
		stats, err := entries.TimeByProject(ctx, alice, window)
		require.NoError(t, err)
		require.Len(t, stats, 1)
		require.Equal(t, project.ID, stats[0].ProjectID)
		require.Equal(t, int64(1500), stats[0].TotalDurationSeconds)

		trend, err := entries.ProductivityTrend(ctx, alice, window)
		require.NoError(t, err)
		require.NotEmpty(t, trend)
	})
}

func TestMigrateDownIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := startDatabase(t, ctx)
	manager := repomanager.NewPostgresRepositoryManager()

	// rolling back all three migrations must leave a clean schema
	for i := 0; i < 3; i++ {
		require.NoError(t, manager.MigrateDown(ctx, db))
	}

	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name IN
		 ('projects', 'tasks', 'labels', 'task_labels', 'time_entries')`).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}
