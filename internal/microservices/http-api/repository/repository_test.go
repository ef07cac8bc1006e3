package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSlugRepo_DeleteMissingSlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories" WHERE slug = $1`)).
		WithArgs("books").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteBySlug(context.Background(), "books")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenreRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "genres"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_genres_slug"})

	err := repo.Create(context.Background(), &models.Genre{Name: "Drama", Slug: "drama"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugRepo_FindBySlugsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenreRepo(db)

	genres, err := repo.FindBySlugs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ExistsByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1`)).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	taken, err := repo.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_DeleteUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE username = $1`)).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateWritesNamedColumnsOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	// role must not appear even though the struct carries one
	mock.ExpectExec(`^` + regexp.QuoteMeta(`UPDATE "users" SET "bio"=$1`) + `(,"updated_at"=\$2)? WHERE ("users"\.)?"id" = \$\d+$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{ID: "u-1", Username: "alice", Role: models.RoleAdmin, Bio: "hello"}
	require.NoError(t, repo.Update(context.Background(), user, "bio"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateNoColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Update(context.Background(), &models.User{ID: "u-1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Activate(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	guarded := `.* WHERE .*id = \$\d+ AND is_active = \$\d+ AND password_hash = \$\d+ AND email = \$\d+.*`

	t.Run("first exchange wins", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "is_active"=$1,"last_login"=$2`) + guarded + `last_login IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user := &models.User{ID: "u-1", Email: "a@x.com", Password: "!h"}
		require.NoError(t, repo.Activate(context.Background(), user, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row already moved on", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "is_active"=$1,"last_login"=$2`) + guarded + `last_login IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		user := &models.User{ID: "u-1", Email: "a@x.com", Password: "!h"}
		err := repo.Activate(context.Background(), user, at)
		assert.ErrorIs(t, err, ErrStale)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guards on the previous login stamp", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "is_active"=$1,"last_login"=$2`) + guarded + `last_login = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		prev := at.Add(-time.Hour)
		user := &models.User{ID: "u-1", Email: "a@x.com", Password: "!h", IsActive: true, LastLogin: &prev}
		require.NoError(t, repo.Activate(context.Background(), user, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
