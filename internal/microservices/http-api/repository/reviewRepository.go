package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	GetByTitleAndID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ExistsByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID int64) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// ListByTitle retrieves the reviews of a title, newest first
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count reviews", err)
	}

	err := r.db.WithContext(ctx).Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, wrapErr("list reviews", err)
	}

	return reviews, total, nil
}

// GetByTitleAndID only finds the review when it belongs to the given title
func (r *reviewRepository) GetByTitleAndID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, wrapErr("get review", err)
	}
	return &review, nil
}

func (r *reviewRepository) ExistsByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Count(&count).Error
	if err != nil {
		return false, wrapErr("check review", err)
	}
	return count > 0, nil
}

// Create relies on idx_review_author_title to reject a second review; the
// violation surfaces as ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return wrapErr("create review", r.db.WithContext(ctx).Omit("Author", "Title").Create(review).Error)
}

// Update only touches the client-editable columns; pub_date, author and title stay put.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	result := r.db.WithContext(ctx).Model(&models.Review{ID: review.ID}).
		Select("text", "score").
		Updates(map[string]interface{}{"text": review.Text, "score": review.Score})
	if result.Error != nil {
		return wrapErr("update review", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update review: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, reviewID)
	if result.Error != nil {
		return wrapErr("delete review", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete review: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
