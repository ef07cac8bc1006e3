package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write trips a unique index.
var ErrDuplicate = errors.New("duplicate record")

// ErrStale is returned when a conditional write finds the row no longer in
// the state it was read in.
var ErrStale = errors.New("record changed since it was read")

const pgUniqueViolation = "23505"

// wrapErr adds the operation name and folds unique violations into ErrDuplicate
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// offset converts 1-based page numbers into a row offset.
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
