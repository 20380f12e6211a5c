// Package database opens the dispatch journal.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 2
	DefaultMaxOpenConns    = 10
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// Driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures Connect.
type Options struct {
	// Production rejects postgres DSNs with sslmode=disable.
	Production bool
	// Debug logs every statement.
	Debug bool
}

// DriverFor picks the driver for a DSN: postgres URLs and keyword DSNs go to
// postgres, everything else is a sqlite file path.
func DriverFor(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	case strings.Contains(dsn, "host=") && strings.Contains(dsn, "dbname="):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// Connect opens the journal database named by dsn.
func Connect(dsn string, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	driver := DriverFor(dsn)

	switch driver {
	case DriverPostgres:
		if opts.Production {
			if err := validateSSLMode(dsn); err != nil {
				return nil, err
			}
		}
		dialector = postgres.Open(dsn)
	default:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0700); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	}

	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configureConnectionPool(db, driver); err != nil {
		return nil, err
	}

	slog.Info("Connected to database successfully", slog.String("driver", driver))
	return db, nil
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(dsn string) error {
	if strings.Contains(dsn, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}
	return nil
}

func configureConnectionPool(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == DriverSQLite {
		// one writer; an in-memory database also lives and dies with its connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return nil
	}

	sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)
	return nil
}

// Migrate runs auto-migration for the journal.
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")

	if err := db.AutoMigrate(&models.Dispatch{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// Ping checks the connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
