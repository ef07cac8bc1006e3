package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator resolves a bearer token to the user behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

// AuthMiddleware attaches the authenticated user to the context when a bearer
// token is present. Requests without a token continue anonymously; a token
// that does not validate is rejected outright.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				slog.ErrorContext(c.Request.Context(), "authenticate_failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetPrincipal(c, user)
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, user *models.User) {
	c.Set(principalKey, user)
}

// Principal returns the authenticated user or nil for anonymous requests.
func Principal(c *gin.Context) *models.User {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// Guard aborts the request unless decide allows it.
func Guard(decide func(c *gin.Context) policy.Decision) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch decide(c) {
		case policy.Allow:
			c.Next()
		case policy.Unauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrNotAuthenticated.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrPermissionDenied.Error()})
		}
	}
}

// ReadOnlyOrAdmin lets anyone read and only admins write.
func ReadOnlyOrAdmin() gin.HandlerFunc {
	return Guard(func(c *gin.Context) policy.Decision {
		return policy.EvaluateReadOnlyOrAdmin(c.Request.Method, Principal(c))
	})
}

// RequireAdmin is the /users guard.
func RequireAdmin() gin.HandlerFunc {
	return Guard(func(c *gin.Context) policy.Decision {
		return policy.EvaluateAuthenticatedAndAdmin(Principal(c))
	})
}

func RequireAuthenticated() gin.HandlerFunc {
	return Guard(func(c *gin.Context) policy.Decision {
		return policy.EvaluateAuthenticated(Principal(c))
	})
}

// ReadOnlyOrAuthenticated is the collection-level check for reviews and
// comments; author/moderator checks happen per object in the services.
func ReadOnlyOrAuthenticated() gin.HandlerFunc {
	return Guard(func(c *gin.Context) policy.Decision {
		return policy.EvaluateAuthorOrModeratorOrReadOnly(c.Request.Method, Principal(c), "")
	})
}
