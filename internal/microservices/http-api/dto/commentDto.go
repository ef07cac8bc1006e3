package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
)

// CreateCommentDTO for creating a comment
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required,min=1"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Text *string `json:"text,omitempty" binding:"omitempty,min=1"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Review  int64     `json:"review"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:      comment.ID,
		Review:  comment.ReviewID,
		Author:  comment.Author.Username,
		Text:    comment.Text,
		PubDate: comment.PubDate,
	}
}
