package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// Options controls how Connect reaches the database
type Options struct {
	AppEnv  string
	Retries int
	Backoff time.Duration
	Debug   bool
}

// Connect opens the PostgreSQL database, retrying with doubling backoff
// until Retries attempts beyond the first are used up.
func Connect(ctx context.Context, databaseURL string, opts Options) (*gorm.DB, error) {
	if opts.AppEnv == "production" {
		if err := validateSSLMode(databaseURL); err != nil {
			return nil, err
		}
	}

	logLevel := logger.Warn
	if opts.Debug {
		logLevel = logger.Info
	}

	backoff := opts.Backoff
	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			slog.Warn("database connection failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("failed to connect to database: %w", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger:         logger.Default.LogMode(logLevel),
			TranslateError: true,
		})
		if err != nil {
			lastErr = err
			continue
		}

		if err := configureConnectionPool(db); err != nil {
			return nil, err
		}

		slog.Info("Connected to database successfully", slog.Int("attempts", attempt+1))
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.Retries+1, lastErr)
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}
	return nil
}

// configureConnectionPool sets up connection pool limits
func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return nil
}

// Migrate runs auto-migration for all models and seeds the system labels
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Domain{},
		&models.EmailAddress{},
		&models.Email{},
		&models.EmailParticipant{},
		&models.Attachment{},
		&models.Label{},
		&models.EmailLabel{},
		&models.Integration{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := SeedSystemLabels(db); err != nil {
		return err
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// SeedSystemLabels creates the shared labels if they are missing
func SeedSystemLabels(db *gorm.DB) error {
	for _, name := range models.SystemLabelNames {
		label := models.Label{Name: name, IsSystem: true}
		err := db.Where("team_id = ? AND name = ? AND is_system = ?", 0, name, true).
			FirstOrCreate(&label).Error
		if err != nil {
			return fmt.Errorf("failed to seed label %q: %w", name, err)
		}
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
