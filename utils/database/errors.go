package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"modix/model"
)

// MapError converts driver errors into domain errors. conflict is returned
// (wrapped) for unique constraint violations so each repository can name
// the rule that was broken.
func MapError(err error, op string, conflict error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			if conflict == nil {
				conflict = model.ErrConflict
			}
			return fmt.Errorf("%s: %w", op, conflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, model.ErrNotFound)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, model.ErrStorage, err)
}

// ExpectOneRow turns a zero-row update into err. It is used by set-once
// updates guarded with "... IS NULL" so a second write never overwrites.
func ExpectOneRow(res sql.Result, op string, err error) error {
	n, rowsErr := res.RowsAffected()
	if rowsErr != nil {
		return fmt.Errorf("failed to check rows affected for %s: %w: %w", op, model.ErrStorage, rowsErr)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
