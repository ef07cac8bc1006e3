package service

import (
	"context"
	"sync"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) Update(ctx context.Context, user *models.User, columns ...string) error {
	return m.Called(ctx, user, columns).Error(0)
}

func (m *MockUserRepo) Activate(ctx context.Context, user *models.User, at time.Time) error {
	return m.Called(ctx, user, at).Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmailAndUsername(ctx context.Context, email, username string) (*models.User, error) {
	args := m.Called(ctx, email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

type MockSlugRepo[T any] struct {
	mock.Mock
}

func (m *MockSlugRepo[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]T), args.Get(1).(int64), args.Error(2)
}

func (m *MockSlugRepo[T]) Create(ctx context.Context, item *T) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockSlugRepo[T]) DeleteBySlug(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *MockSlugRepo[T]) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockSlugRepo[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockSlugRepo[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	args := m.Called(ctx, slugs)
	return args.Get(0).([]T), args.Error(1)
}

type MockTitleRepo struct {
	mock.Mock
}

func (m *MockTitleRepo) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTitleRepo) Create(ctx context.Context, t *models.Title) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTitleRepo) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	return m.Called(ctx, t, replaceGenres).Error(0)
}

func (m *MockTitleRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepo) GetByTitleAndID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepo) ExistsByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (bool, error) {
	args := m.Called(ctx, authorID, titleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepo) Update(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepo) Delete(ctx context.Context, reviewID int64) error {
	return m.Called(ctx, reviewID).Error(0)
}

type MockCommentRepo struct {
	mock.Mock
}

func (m *MockCommentRepo) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, reviewID, page, pageSize)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepo) GetByReviewAndID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	args := m.Called(ctx, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepo) Delete(ctx context.Context, commentID int64) error {
	return m.Called(ctx, commentID).Error(0)
}

// recordingNotifier captures delivered codes instead of mailing them.
type recordingNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{codes: make(map[string]string)}
}

func (n *recordingNotifier) SendConfirmationCode(_, username, code string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[username] = code
}

func (n *recordingNotifier) code(username string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[username]
}

// memoryCache is an in-process TitleCache used to observe invalidations.
type memoryCache struct {
	items       map[int64]*dto.TitleResponse
	invalidated []int64
	flushed     int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[int64]*dto.TitleResponse)}
}

func (c *memoryCache) Get(_ context.Context, id int64) (*dto.TitleResponse, bool) {
	t, ok := c.items[id]
	return t, ok
}

func (c *memoryCache) Set(_ context.Context, id int64, t *dto.TitleResponse) {
	c.items[id] = t
}

func (c *memoryCache) Invalidate(_ context.Context, id int64) {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
}

func (c *memoryCache) InvalidateAll(context.Context) {
	c.items = make(map[int64]*dto.TitleResponse)
	c.flushed++
}
