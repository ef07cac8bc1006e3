package handler

import (
	"time"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.SlugService
	Genres     service.SlugService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
}

type RouterOptions struct {
	CORSOrigins    []string
	EnableMetrics  bool
	AuthRateLimit  gin.HandlerFunc // applied to /auth only; nil disables
	HealthCheck    Pinger
	DisableLogging bool
}

// NewRouter wires every handler under /api/v1. It registers the custom
// binding tags the DTOs rely on.
func NewRouter(svcs Services, opts RouterOptions) *gin.Engine {
	validation.RegisterCustomValidators()

	router := gin.New()
	if !opts.DisableLogging {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())

	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if opts.EnableMetrics {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	router.GET("/check-conn", CheckConn(opts.HealthCheck))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(svcs.Auth))

	var authGuards []gin.HandlerFunc
	if opts.AuthRateLimit != nil {
		authGuards = append(authGuards, opts.AuthRateLimit)
	}
	NewAuthHandler(svcs.Auth).RegisterRoutes(v1.Group("/auth"), authGuards...)

	NewSlugHandler(svcs.Categories).RegisterRoutes(v1.Group("/categories"))
	NewSlugHandler(svcs.Genres).RegisterRoutes(v1.Group("/genres"))

	titles := v1.Group("/titles")
	NewTitleHandler(svcs.Titles).RegisterRoutes(titles)
	NewReviewHandler(svcs.Reviews).RegisterRoutes(titles)
	NewCommentHandler(svcs.Comments).RegisterRoutes(titles)

	NewUserHandler(svcs.Users).RegisterRoutes(v1.Group("/users"))

	return router
}
