package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment routes under the /titles group
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/:title_id/reviews/:review_id/comments", middleware.ReadOnlyOrAuthenticated())
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.GET("/:comment_id", h.Get)
		comments.PATCH("/:comment_id", h.Update)
		comments.DELETE("/:comment_id", h.Delete)
	}
}

// parents reads the title and review ids every comment route is scoped to.
func parents(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = pathID(c, "title_id"); !ok {
		return
	}
	reviewID, ok = pathID(c, "review_id")
	return
}

// List returns the comments of a review
// GET /titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, pageSize := pageParams(c)
	resp, err := h.commentService.List(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get retrieves a comment by ID
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.commentService.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create creates a new comment on a review
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.commentService.Create(ctx, middleware.Principal(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update edits a comment (author, moderator or admin)
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.commentService.Update(ctx, middleware.Principal(c), titleID, reviewID, commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete deletes a comment (author, moderator or admin)
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.Principal(c), titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
