package service

import (
	"context"
	"fmt"
	"testing"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	alice     = &models.User{ID: "u-alice", Username: "alice", Role: models.RoleUser, IsActive: true}
	bob       = &models.User{ID: "u-bob", Username: "bob", Role: models.RoleUser, IsActive: true}
	moderator = &models.User{ID: "u-mod", Username: "mod", Role: models.RoleModerator, IsActive: true}
)

func newReviewFixture() (*MockReviewRepo, *MockTitleRepo, *memoryCache, ReviewService) {
	reviews := new(MockReviewRepo)
	titles := new(MockTitleRepo)
	cache := newMemoryCache()
	return reviews, titles, cache, NewReviewService(reviews, titles, cache)
}

func TestReviewCreate_Success(t *testing.T) {
	ctx := context.Background()
	reviews, titles, cache, svc := newReviewFixture()

	titles.On("Exists", ctx, int64(1)).Return(true, nil)
	reviews.On("ExistsByAuthorAndTitle", ctx, alice.ID, int64(1)).Return(false, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.AuthorID == alice.ID && r.TitleID == 1 && r.Score == 8
	})).Return(nil)

	resp, err := svc.Create(ctx, alice, 1, dto.CreateReviewDTO{Text: "great", Score: 8})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Author)
	assert.Equal(t, int64(1), resp.Title)
	assert.Contains(t, cache.invalidated, int64(1))
}

func TestReviewCreate_OnePerTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("pre-check", func(t *testing.T) {
		reviews, titles, _, svc := newReviewFixture()
		titles.On("Exists", ctx, int64(1)).Return(true, nil)
		reviews.On("ExistsByAuthorAndTitle", ctx, alice.ID, int64(1)).Return(true, nil)

		_, err := svc.Create(ctx, alice, 1, dto.CreateReviewDTO{Text: "again", Score: 5})
		verr := requireValidation(t, err, "")
		assert.Equal(t, MsgOneReviewPerTitle, verr.Message)
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique index race", func(t *testing.T) {
		reviews, titles, _, svc := newReviewFixture()
		titles.On("Exists", ctx, int64(1)).Return(true, nil)
		reviews.On("ExistsByAuthorAndTitle", ctx, alice.ID, int64(1)).Return(false, nil)
		reviews.On("Create", ctx, mock.Anything).Return(fmt.Errorf("create review: %w", repository.ErrDuplicate))

		_, err := svc.Create(ctx, alice, 1, dto.CreateReviewDTO{Text: "again", Score: 5})
		verr := requireValidation(t, err, "")
		assert.Equal(t, MsgOneReviewPerTitle, verr.Message)
	})
}

func TestReviewCreate_Guards(t *testing.T) {
	ctx := context.Background()

	_, _, _, svc := newReviewFixture()
	_, err := svc.Create(ctx, nil, 1, dto.CreateReviewDTO{Text: "x", Score: 5})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Create(ctx, alice, 1, dto.CreateReviewDTO{Text: "x", Score: 11})
	requireValidation(t, err, "score")

	_, titles, _, svc := newReviewFixture()
	titles.On("Exists", ctx, int64(404)).Return(false, nil)
	_, err = svc.Create(ctx, alice, 404, dto.CreateReviewDTO{Text: "x", Score: 5})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "title", nf.Resource)
}

func TestReviewUpdate_Permissions(t *testing.T) {
	ctx := context.Background()
	text := "edited"

	tests := []struct {
		name      string
		principal *models.User
		wantErr   error
	}{
		{"author", alice, nil},
		{"moderator", moderator, nil},
		{"other user", bob, ErrPermissionDenied},
		{"anonymous", nil, ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, _, _, svc := newReviewFixture()
			reviews.On("GetByTitleAndID", ctx, int64(1), int64(2)).
				Return(&models.Review{ID: 2, TitleID: 1, AuthorID: alice.ID, Author: *alice, Text: "old", Score: 4}, nil)
			reviews.On("Update", ctx, mock.Anything).Return(nil)

			resp, err := svc.Update(ctx, tt.principal, 1, 2, dto.UpdateReviewDTO{Text: &text})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "edited", resp.Text)
			assert.Equal(t, 4, resp.Score)
			assert.Equal(t, "alice", resp.Author)
		})
	}
}

func TestReviewGet_WrongTitle(t *testing.T) {
	ctx := context.Background()
	reviews, _, _, svc := newReviewFixture()
	reviews.On("GetByTitleAndID", ctx, int64(2), int64(5)).Return(nil, fmt.Errorf("get review: %w", gorm.ErrRecordNotFound))

	_, err := svc.Get(ctx, 2, 5)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "review", nf.Resource)
}

func TestReviewDelete_Moderator(t *testing.T) {
	ctx := context.Background()
	reviews, _, cache, svc := newReviewFixture()
	reviews.On("GetByTitleAndID", ctx, int64(1), int64(2)).Return(&models.Review{ID: 2, TitleID: 1, AuthorID: alice.ID}, nil)
	reviews.On("Delete", ctx, int64(2)).Return(nil)

	require.NoError(t, svc.Delete(ctx, moderator, 1, 2))
	assert.Contains(t, cache.invalidated, int64(1))
}
