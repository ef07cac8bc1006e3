package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	GetByReviewAndID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, commentID int64) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListByReview retrieves all comments for a review with pagination, newest first
func (r *commentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count comments", err)
	}

	err := r.db.WithContext(ctx).Where("review_id = ?", reviewID).
		Preload("Author").
		Order("pub_date DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, wrapErr("list comments", err)
	}

	return comments, total, nil
}

func (r *commentRepository) GetByReviewAndID(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where("id = ? AND review_id = ?", commentID, reviewID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, wrapErr("get comment", err)
	}
	return &comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return wrapErr("create comment", r.db.WithContext(ctx).Omit("Author", "Review").Create(comment).Error)
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).
		Select("text").
		Updates(map[string]interface{}{"text": comment.Text})
	if result.Error != nil {
		return wrapErr("update comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update comment: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, commentID)
	if result.Error != nil {
		return wrapErr("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete comment: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
