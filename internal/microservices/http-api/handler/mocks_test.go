package handler

import (
	"context"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/stretchr/testify/mock"
)

// MockAuthService resolves the fixed tokens below and mocks the rest.
type MockAuthService struct {
	mock.Mock
}

var principals = map[string]*models.User{
	"user-token":  {ID: "u-1", Username: "alice", Email: "a@x.com", Role: models.RoleUser, IsActive: true},
	"mod-token":   {ID: "u-2", Username: "mod", Email: "m@x.com", Role: models.RoleModerator, IsActive: true},
	"admin-token": {ID: "u-3", Username: "root", Email: "r@x.com", Role: models.RoleAdmin, IsActive: true},
}

func (m *MockAuthService) Signup(ctx context.Context, email, username string) (*models.User, error) {
	args := m.Called(email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authenticate(_ context.Context, token string) (*models.User, error) {
	if user, ok := principals[token]; ok {
		return user, nil
	}
	return nil, service.ErrInvalidToken
}

type MockSlugService struct {
	mock.Mock
}

func (m *MockSlugService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.SlugResponse], error) {
	args := m.Called(search, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.SlugResponse]), args.Error(1)
}

func (m *MockSlugService) Create(ctx context.Context, req dto.CreateSlugDTO) (*dto.SlugResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SlugResponse), args.Error(1)
}

func (m *MockSlugService) Delete(ctx context.Context, slug string) error {
	return m.Called(slug).Error(0)
}

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	args := m.Called(filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.TitleResponse]), args.Error(1)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	args := m.Called(titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.ReviewResponse]), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, principal *models.User, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(principal, titleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, principal *models.User, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(principal, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, principal *models.User, titleID, reviewID int64) error {
	return m.Called(principal, titleID, reviewID).Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	args := m.Called(titleID, reviewID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.CommentResponse]), args.Error(1)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	args := m.Called(titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, principal *models.User, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(principal, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, principal *models.User, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(principal, titleID, reviewID, commentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, principal *models.User, titleID, reviewID, commentID int64) error {
	return m.Called(principal, titleID, reviewID, commentID).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	args := m.Called(search, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.UserResponse]), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, req dto.CreateUserDTO) (*dto.UserResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	args := m.Called(username, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, username string) error {
	return m.Called(username).Error(0)
}

func (m *MockUserService) UpdateMe(ctx context.Context, me *models.User, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	args := m.Called(me, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}
