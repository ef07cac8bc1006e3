package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc service.TitleService
}

func NewTitleHandler(svc service.TitleService) *TitleHandler {
	return &TitleHandler{svc: svc}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	titles := rg.Group("", middleware.ReadOnlyOrAdmin())
	titles.GET("", h.List)
	titles.POST("", h.Create)
	titles.GET("/:title_id", h.Get)
	titles.PATCH("/:title_id", h.Update)
	titles.DELETE("/:title_id", h.Delete)
}

// List supports name (substring), year, genre and category (slugs) filters.
// GET /titles?name=&year=&genre=&category=
func (h *TitleHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	filter := repository.TitleFilter{
		Name:     c.Query("name"),
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
	}
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer", "field": "year"})
			return
		}
		filter.Year = &year
	}

	page, pageSize := pageParams(c)
	resp, err := h.svc.List(ctx, filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create responds with the read shape, nested category/genres included.
func (h *TitleHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Update(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
