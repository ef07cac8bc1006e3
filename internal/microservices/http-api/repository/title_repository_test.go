package repository

import (
	"context"
	"regexp"
	"testing"

	"yamdb/internal/microservices/http-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ratingSelect pins the rating to the mean of review scores, computed in the
// select so it is NULL for a title nobody reviewed.
var ratingSelect = regexp.QuoteMeta(
	`SELECT titles.*, (SELECT AVG(reviews.score)::float8 FROM reviews WHERE reviews.title_id = titles.id) AS rating FROM "titles"`)

var titleColumns = []string{"id", "name", "year", "description", "category_id", "rating"}

func titleFixture() *models.Title {
	category := int64(2)
	return &models.Title{ID: 7, Name: "Dune", Year: 1965, CategoryID: &category}
}

// expectTitlePreloads answers the category and genre preloads for a single
// title in category 2 tagged with genre 4.
func expectTitlePreloads(mock sqlmock.Sqlmock, titleID int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "categories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(2, "Books", "books"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "genre_titles"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "genre_id", "title_id"}).AddRow(1, 4, titleID))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "genres"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name"}).AddRow(4, "sci-fi", "Sci-Fi"))
}

func TestTitleRepo_GetByID_RatingNullWithoutReviews(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewTitleRepo(db)

	mock.ExpectQuery(ratingSelect+` WHERE titles\.id = \$1`).
		WillReturnRows(sqlmock.NewRows(titleColumns).AddRow(7, "Dune", 1965, nil, 2, nil))
	expectTitlePreloads(mock, 7)

	title, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, title.Rating)
	assert.Equal(t, "Dune", title.Name)
	require.NotNil(t, title.Category)
	assert.Equal(t, "books", title.Category.Slug)
	require.Len(t, title.Genres, 1)
	assert.Equal(t, "sci-fi", title.Genres[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTitleRepo_GetByID_RatingIsMean(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewTitleRepo(db)

	mock.ExpectQuery(ratingSelect+` WHERE titles\.id = \$1`).
		WillReturnRows(sqlmock.NewRows(titleColumns).AddRow(7, "Dune", 1965, "desert planet", 2, 7.5))
	expectTitlePreloads(mock, 7)

	title, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.Equal(t, 7.5, *title.Rating)
	require.NotNil(t, title.Description)
	assert.Equal(t, "desert planet", *title.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTitleRepo_GetByID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTitleRepo(db)

	mock.ExpectQuery(ratingSelect + ` WHERE titles\.id = \$1`).
		WillReturnRows(sqlmock.NewRows(titleColumns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTitleRepo_ListAppliesEveryFilter(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewTitleRepo(db)

	filters := ` WHERE titles\.name ILIKE \$1 AND titles\.year = \$2` +
		` AND \(?EXISTS \(SELECT 1 FROM genre_titles gt JOIN genres g ON g\.id = gt\.genre_id\s*WHERE gt\.title_id = titles\.id AND g\.slug = \$3\)\)?` +
		` AND titles\.category_id IN \(SELECT id FROM categories WHERE slug = \$4\)`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "titles"`)+filters).
		WithArgs("%dune%", 1965, "sci-fi", "books").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(ratingSelect + filters + ` ORDER BY titles\.id asc`).
		WillReturnRows(sqlmock.NewRows(titleColumns).AddRow(7, "Dune", 1965, nil, 2, 9.0))
	expectTitlePreloads(mock, 7)

	year := 1965
	list, total, err := repo.List(context.Background(), TitleFilter{
		Name:     " dune ",
		Year:     &year,
		Genre:    "sci-fi",
		Category: "books",
	}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Rating)
	assert.Equal(t, 9.0, *list[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTitleRepo_ListWithoutFilters(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewTitleRepo(db)

	mock.ExpectQuery(`^` + regexp.QuoteMeta(`SELECT count(*) FROM "titles"`) + `$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(ratingSelect + ` ORDER BY titles\.id asc`).
		WillReturnRows(sqlmock.NewRows(titleColumns).AddRow(7, "Dune", 1965, nil, 2, nil))
	expectTitlePreloads(mock, 7)

	list, total, err := repo.List(context.Background(), TitleFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTitleRepo_UpdateRunsInTransaction(t *testing.T) {
	update := regexp.QuoteMeta(`UPDATE "titles" SET `) + `.* WHERE ("titles"\.)?"id" = \$5`

	t.Run("commits", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTitleRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Update(context.Background(), titleFixture(), false)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing title rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTitleRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), titleFixture(), true)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
