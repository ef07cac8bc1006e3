package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/cache"
	"yamdb/internal/config"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("database_connect_failed", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	rdb, err := cache.Connect(context.Background(), cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		// the cache is optional; run without it
		logger.Warn("redis_unavailable", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}
	titleCache := cache.NewTitleCache(rdb, cfg.CacheTTLDuration())

	var sender mailer.Sender = mailer.LogSender{}
	if cfg.SMTPEnabled() {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort), cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	}
	dispatcher := mailer.NewDispatcher(sender, cfg.MailTimeout)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	var svcCache service.TitleCache
	if titleCache != nil {
		svcCache = titleCache
	}
	codes := service.NewConfirmationCodes(cfg.JWTSecret, cfg.ConfirmationCodeTTL)
	svcs := handler.Services{
		Auth:       service.NewAuthService(userRepo, codes, dispatcher, cfg.JWTSecret, cfg.AccessTokenTTL),
		Users:      service.NewUserService(userRepo, svcCache),
		Categories: service.NewCategoryService(categoryRepo, svcCache),
		Genres:     service.NewGenreService(genreRepo, svcCache),
		Titles:     service.NewTitleService(titleRepo, categoryRepo, genreRepo, svcCache),
		Reviews:    service.NewReviewService(reviewRepo, titleRepo, svcCache),
		Comments:   service.NewCommentService(commentRepo, reviewRepo),
	}

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(time.Minute, stop)

	router := handler.NewRouter(svcs, handler.RouterOptions{
		CORSOrigins:   cfg.CORSOrigins,
		EnableMetrics: cfg.PrometheusEnabled,
		AuthRateLimit: limiter.Middleware(),
		HealthCheck:   database.Pinger(db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err)
	}
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := dispatcher.Wait(ctx); err != nil {
		logger.Warn("pending_emails_dropped", "error", err)
	}
	logger.Info("server_stopped_gracefully")
}
