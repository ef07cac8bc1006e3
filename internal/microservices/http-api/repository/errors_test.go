package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("noop", nil))

	err := wrapErr("create review", &pgconn.PgError{Code: "23505", ConstraintName: "idx_review_author_title"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "create review")

	err = wrapErr("create user", fmt.Errorf("exec: %w", gorm.ErrDuplicatedKey))
	assert.ErrorIs(t, err, ErrDuplicate)

	err = wrapErr("create title", &pgconn.PgError{Code: "23503"})
	assert.False(t, errors.Is(err, ErrDuplicate))

	err = wrapErr("get title", gorm.ErrRecordNotFound)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(1, 20))
	assert.Equal(t, 0, offset(0, 20))
	assert.Equal(t, 40, offset(3, 20))
}
