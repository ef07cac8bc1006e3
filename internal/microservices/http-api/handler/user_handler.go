package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRoutes mounts /users. The static /me routes win over /:username in
// gin's tree, so "me" never reaches the admin handlers.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/me", middleware.RequireAuthenticated())
	me.GET("", h.GetMe)
	me.PATCH("", h.UpdateMe)

	admin := rg.Group("", middleware.RequireAdmin())
	admin.GET("", h.List)
	admin.POST("", h.Create)
	admin.GET("/:username", h.Get)
	admin.PATCH("/:username", h.Update)
	admin.DELETE("/:username", h.Delete)
}

// GET /users?search=
func (h *UserHandler) List(c *gin.Context) {
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

func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.Get(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.CreateUserDTO
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

func (h *UserHandler) Update(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Update(ctx, c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMe returns the caller's profile
func (h *UserHandler) GetMe(c *gin.Context) {
	resp := dto.FromModelToUserResponse(*middleware.Principal(c))
	c.JSON(http.StatusOK, resp)
}

// UpdateMe edits the caller's profile; role changes are ignored
func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.UpdateMe(ctx, middleware.Principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
