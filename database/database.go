package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-api/config"
	"recipe-api/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for cfg.Driver.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN turns on foreign key enforcement unless the DSN sets it.
// SQLite leaves it off per connection, and the ON DELETE CASCADE rules
// depend on it.
func sqliteDSN(dsn string) string {
	_, query, _ := strings.Cut(dsn, "?")
	for _, param := range strings.Split(query, "&") {
		key, _, _ := strings.Cut(param, "=")
		if key == "_foreign_keys" || key == "_fk" {
			return dsn
		}
	}
	if query == "" && !strings.HasSuffix(dsn, "?") {
		return dsn + "?_foreign_keys=on"
	}
	if strings.HasSuffix(dsn, "?") || strings.HasSuffix(dsn, "&") {
		return dsn + "_foreign_keys=on"
	}
	return dsn + "&_foreign_keys=on"
}

// NewLogger routes gorm's SQL log through zap.
func NewLogger(log *zap.Logger, level string) logger.Interface {
	return logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel(level),
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  false,
		},
	)
}

func gormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Open connects to the configured database. Duplicate key violations are
// reported as gorm.ErrDuplicatedKey on every driver.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewLogger(log, cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for all models, join tables included.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Ingredient{},
		&models.Recipe{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WaitForDB retries Open and Ping every interval until the database answers
// or ctx is done.
func WaitForDB(ctx context.Context, cfg config.DatabaseConfig, interval time.Duration, log *zap.Logger) (*gorm.DB, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		db, err := Open(cfg, log)
		if err == nil {
			if err = Ping(ctx, db); err == nil {
				log.Info("Database available", zap.Int("attempt", attempt))
				return db, nil
			}
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
		}
		log.Warn("Database unavailable, waiting", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database not available: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
