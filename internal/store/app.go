// Package store initializes and runs the schema tooling: it owns the
// database handle, the repository manager, and the migration commands.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/optitask/backend/internal/logging"
	"github.com/optitask/backend/internal/store/config"
	"github.com/optitask/backend/internal/store/repositories/repomanager"
)

// Migration commands accepted by App.Run.
const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager repomanager.RepositoryManager
}

func NewApp(c *config.Config) *App {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	sl := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	return &App{
		config:  c,
		logger:  logging.NewSlogLogger(sl),
		manager: repomanager.NewPostgresRepositoryManager(),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run executes one migration command against the configured database,
// bounded by the migrate timeout and interruptible by signal.
func (app *App) Run(ctx context.Context, command string) error {
	ctx, cancelFunc := context.WithTimeout(ctx, app.config.MigrateTimeout)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	app.logger.Debug(ctx, "database reachable", "command", command)

	switch command {
	case CommandUp:
		err = app.manager.MigrateUp(ctx, db)
	case CommandDown:
		err = app.manager.MigrateDown(ctx, db)
	case CommandStatus:
		err = app.manager.MigrationStatus(ctx, db)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s error: %w", command, err)
	}

	app.logger.Info(ctx, "migration command finished", "command", command)
	return nil
}
