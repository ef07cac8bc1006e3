package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing dependency, typically the database.
type Pinger func(ctx context.Context) error

// CheckConn reports whether the API can reach its database.
// GET /check-conn
func CheckConn(ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		if ping != nil {
			if err := ping(ctx); err != nil {
				slog.WarnContext(ctx, "health_check_failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
	}
}
