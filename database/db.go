package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"college-reclaim/config"
	"college-reclaim/migrations"
)

// Sentinel errors shared by the service layer; handlers map them to HTTP
// status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

const maxConnectAttempts = 6

// Connect opens the MySQL connection, waits for the database to come up and
// applies pending migrations.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Wait for the database with exponential backoff
	waitInterval := 1 * time.Second
	for attempt := 1; ; attempt++ {
		if err := db.Ping(); err == nil {
			break
		} else if attempt >= maxConnectAttempts {
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		} else {
			log.WithError(err).Warnf("Database connection failed, retrying in %v", waitInterval)
			time.Sleep(waitInterval)
			waitInterval *= 2
		}
	}

	log.Info("Running database migrations")
	if err := migrations.Run(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
