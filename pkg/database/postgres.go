package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"messagely/config"
	"messagely/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Connect opens the pgx-backed pool and verifies the server is reachable.
func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	if err := HealthCheck(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// HealthCheck pings the database with a short timeout.
func HealthCheck(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// seams for tests
var (
	gooseUp     = goose.UpContext
	gooseDownTo = goose.DownToContext
	gooseStatus = goose.StatusContext
	gooseReset  = goose.ResetContext
)

func prepareGoose() error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.SetDialect("postgres")
}

// Migrate applies every embedded migration that has not run yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Rollback reverts all embedded migrations.
func Rollback(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := gooseDownTo(ctx, db, ".", 0); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// Status prints the applied state of each migration through goose's logger.
func Status(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return gooseStatus(ctx, db, ".")
}

// Reset rolls everything back and applies the schema again.
func Reset(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := gooseReset(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return gooseUp(ctx, db, ".")
}
