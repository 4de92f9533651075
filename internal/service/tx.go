package service

import (
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// rollback is deferred after Beginx; a rollback after commit is a no-op.
func rollback(tx *sqlx.Tx, op string) {
	err := tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		slog.Error("failed to roll back transaction", "error", err, "op", op)
	}
}
