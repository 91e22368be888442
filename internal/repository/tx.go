package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

// violatesConstraint reports whether err is a postgres error with the given
// SQLSTATE code raised by the named constraint. An empty constraint matches any.
func violatesConstraint(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}

	return constraint == "" || pgErr.ConstraintName == constraint
}

func isUniqueViolation(err error, constraint string) bool {
	return violatesConstraint(err, pgerrcode.UniqueViolation, constraint)
}

func isExclusionViolation(err error, constraint string) bool {
	return violatesConstraint(err, pgerrcode.ExclusionViolation, constraint)
}

func isForeignKeyViolation(err error) bool {
	return violatesConstraint(err, pgerrcode.ForeignKeyViolation, "")
}
