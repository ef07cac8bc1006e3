package service

import (
	"context"
	"errors"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
)

// MsgOneReviewPerTitle is the validation message for a second review by the same author.
const MsgOneReviewPerTitle = "one review per title allowed"

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, principal *models.User, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, principal *models.User, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, principal *models.User, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
	cache   TitleCache
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository, cache TitleCache) ReviewService {
	return &reviewService{
		reviews: reviews,
		titles:  titles,
		cache:   cacheOrNoop(cache),
	}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Resource: "title"}
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	reviews, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPaginated(reviews, total, page, pageSize, dto.FromModelToReviewResponse), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		return nil, translate("review", err)
	}
	resp := dto.FromModelToReviewResponse(*review)
	return &resp, nil
}

// Create posts a review as principal. The unique index on (author, title)
// backs up the pre-check when two requests race.
func (s *reviewService) Create(ctx context.Context, principal *models.User, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := authorize(policy.EvaluateAuthorOrModeratorOrReadOnly(http.MethodPost, principal, "")); err != nil {
		return nil, err
	}
	if err := validateScore(req.Score); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByAuthorAndTitle(ctx, principal.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newValidationError("", MsgOneReviewPerTitle)
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: principal.ID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("", MsgOneReviewPerTitle)
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, titleID)

	review.Author = *principal
	resp := dto.FromModelToReviewResponse(*review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, principal *models.User, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		return nil, translate("review", err)
	}
	if err := authorize(policy.EvaluateAuthorOrModeratorOrReadOnly(http.MethodPatch, principal, review.AuthorID)); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		if err := validateScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, translate("review", err)
	}
	s.cache.Invalidate(ctx, titleID)

	resp := dto.FromModelToReviewResponse(*review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, principal *models.User, titleID, reviewID int64) error {
	review, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		return translate("review", err)
	}
	if err := authorize(policy.EvaluateAuthorOrModeratorOrReadOnly(http.MethodDelete, principal, review.AuthorID)); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return translate("review", err)
	}
	s.cache.Invalidate(ctx, titleID)
	return nil
}

func validateScore(score int) error {
	if score < 1 || score > 10 {
		return newValidationError("score", "score must be between 1 and 10")
	}
	return nil
}
