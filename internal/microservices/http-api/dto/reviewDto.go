package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
)

// CreateReviewDTO for posting a review; author and title come from the request context
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required,min=1,max=10"`
}

// UpdateReviewDTO for PATCH, every field optional
type UpdateReviewDTO struct {
	Text  *string `json:"text,omitempty" binding:"omitempty,min=1"`
	Score *int    `json:"score,omitempty" binding:"omitempty,min=1,max=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Title   int64     `json:"title"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToReviewResponse expects the Author association to be loaded
func FromModelToReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      review.ID,
		Title:   review.TitleID,
		Author:  review.Author.Username,
		Text:    review.Text,
		Score:   review.Score,
		PubDate: review.PubDate,
	}
}
