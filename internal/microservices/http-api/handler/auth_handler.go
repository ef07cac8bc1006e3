package handler

import (
	"net/http"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts the anonymous auth endpoints behind the given guards
// (the rate limiter in production).
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	auth := rg.Group("", guards...)
	auth.POST("/signup", h.Signup)
	auth.POST("/token", h.Token)
}

// Signup registers (or re-sends a code to) an inactive account and echoes the identity.
// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Signup(ctx, req.Email, req.Username)
	if err != nil {
		metrics.RecordAuthEvent("signup_rejected")
		respondError(c, err)
		return
	}

	metrics.RecordAuthEvent("signup_code_issued")
	c.JSON(http.StatusOK, dto.SignupRequest{Email: user.Email, Username: user.Username})
}

// Token exchanges a confirmation code for an access token.
// POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.authService.IssueToken(ctx, req.Username, req.ConfirmationCode)
	if err != nil {
		metrics.RecordAuthEvent("token_rejected")
		respondError(c, err)
		return
	}

	metrics.RecordAuthEvent("token_issued")
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
