package repositories

import (
	"context"
	_ "embed"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
)

//go:embed schema.sql
var Schema string

// Migrate creates the users, places and favorites tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	logger.Log.Infow("schema migration", "error", err)
	return err
}
