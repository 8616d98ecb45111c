// Package session binds a caller identity to database work so the engine's
// row-level security policies apply. The policies installed by the schema
// read the app.current_user_id setting through the current_app_user() SQL
// function; without it set, no rows are visible at all.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/optitask/backend/internal/dbx"
)

// Setting is the configuration parameter the row-level security policies
// read the caller identity from.
const Setting = "app.current_user_id"

// RunAs runs fn inside a transaction whose caller identity is userID.
// The identity is installed with set_config(..., is_local=true), so it
// evaporates with the transaction and never leaks onto a pooled connection.
func RunAs(ctx context.Context, db *sql.DB, userID uuid.UUID, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT set_config($1, $2, true)`, Setting, userID.String()); err != nil {
			return fmt.Errorf("setting caller identity: %w", err)
		}
		return fn(ctx, tx)
	})
}

// Bind installs the caller identity for the lifetime of a dedicated
// connection. Use this for long-lived sessions that issue many statements;
// the connection must not be returned to a shared pool while bound.
func Bind(ctx context.Context, conn *sql.Conn, userID uuid.UUID) error {
	if _, err := conn.ExecContext(ctx, `SELECT set_config($1, $2, false)`, Setting, userID.String()); err != nil {
		return fmt.Errorf("setting caller identity: %w", err)
	}
	return nil
}
