package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// SlugHandler serves /categories and /genres: list, create and delete by slug.
type SlugHandler struct {
	svc service.SlugService
}

func NewSlugHandler(svc service.SlugService) *SlugHandler {
	return &SlugHandler{svc: svc}
}

func (h *SlugHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.ReadOnlyOrAdmin())
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:slug", h.Delete)
}

// GET /categories?search=
func (h *SlugHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, pageSize := pageParams(c)
	resp, err := h.svc.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SlugHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateSlugDTO
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

func (h *SlugHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
