package service

import (
	"context"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, principal *models.User, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, principal *models.User, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, principal *models.User, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{
		comments: comments,
		reviews:  reviews,
	}
}

// requireReview resolves the review only when it belongs to the title in the path.
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID); err != nil {
		return translate("review", err)
	}
	return nil
}

// List returns the comments of a review, newest first
func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comments, total, err := s.comments.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPaginated(comments, total, page, pageSize, dto.FromModelToCommentResponse), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		return nil, translate("comment", err)
	}
	resp := dto.FromModelToCommentResponse(*comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, principal *models.User, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := authorize(policy.EvaluateAuthorOrModeratorOrReadOnly(http.MethodPost, principal, "")); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: principal.ID,
		Text:     req.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = *principal
	resp := dto.FromModelToCommentResponse(*comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, principal *models.User, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		return nil, translate("comment", err)
	}
	if err := authorize(policy.EvaluateAuthorOrModeratorOrReadOnly(http.MethodPatch, principal, comment.AuthorID)); err != nil {
		return nil, err
	}

	if req.Text != nil {
		comment.Text = *req.Text
		if err := s.comments.Update(ctx, comment); err != nil {
			return nil, translate("comment", err)
		}
	}

	resp := dto.FromModelToCommentResponse(*comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, principal *models.User, titleID, reviewID, commentID int64) error {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	comment, err := s.comments.GetByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		return translate("comment", err)
	}
	if err := authorize(policy.EvaluateAuthorOrModeratorOrReadOnly(http.MethodDelete, principal, comment.AuthorID)); err != nil {
		return err
	}
	return translate("comment", s.comments.Delete(ctx, comment.ID))
}
