package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError maps service errors onto status codes. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var cerr *service.ConflictError
	var nerr *service.NotFoundError

	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadRequest, gin.H{"error": cerr.Error()})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Error()})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request_failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError reports payload problems per field when the validator
// produced them, and a generic message for malformed JSON.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validation.FieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

// pathID parses a numeric path parameter; anything else cannot name a row, so it is a 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

// pageParams reads page/page_size, falling back to defaults for bad input.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return dto.NormalizePage(page, pageSize)
}
