package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// New creates a new SQLite database connection. The pool is limited to one
// connection so that an in-memory database stays a single database.
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{DB: db, logger: zerolog.Nop()}, nil
}

// Open creates a connection and applies pending migrations. Any failure is
// reported as robot.ErrStorageUnavailable.
func Open(ctx context.Context, dataSourceName string, logger zerolog.Logger) (*DB, error) {
	db, err := New(dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", robot.ErrStorageUnavailable, err)
	}
	db.logger = logger

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", robot.ErrStorageUnavailable, err)
	}
	return db, nil
}
