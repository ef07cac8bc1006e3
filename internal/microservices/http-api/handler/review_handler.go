package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// RegisterRoutes expects the /titles group.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/:title_id/reviews", middleware.ReadOnlyOrAuthenticated())
	{
		reviews.GET("", h.List)
		reviews.POST("", h.Create)
		reviews.GET("/:review_id", h.Get)
		reviews.PATCH("/:review_id", h.Update)
		reviews.DELETE("/:review_id", h.Delete)
	}
}

// List returns the reviews of a title, newest first
// GET /titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, pageSize := pageParams(c)
	resp, err := h.svc.List(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create posts a review by the caller
// POST /titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Create(ctx, middleware.Principal(c), titleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Update(ctx, middleware.Principal(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.Principal(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
