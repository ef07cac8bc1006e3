package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres pool and brings the schema up to date.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		// close the pool if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	slog.Info("database_connected")
	return db, nil
}

// Migrate registers the explicit genre/title join model and auto-migrates every table.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Title{}, "Genres", &models.GenreTitle{}); err != nil {
		return fmt.Errorf("failed to set up genre_titles join table: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	slog.Info("database_migrated")
	return nil
}

// Pinger adapts the pool to the /check-conn handler.
func Pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.IsDevelopment() && cfg.LogLevel == "debug" {
		return logger.Info
	}
	return logger.Warn
}
