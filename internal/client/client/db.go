package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/fincatch/fincatch/internal/client/migrations"
	"github.com/fincatch/fincatch/internal/client/repositories/entries"
	"github.com/fincatch/fincatch/internal/client/repositories/payments"
	"github.com/fincatch/fincatch/internal/client/repositories/portfolios"
	"github.com/fincatch/fincatch/internal/client/repositories/syncmeta"
)

// Repositories bundles the per-table repositories over one shared handle.
type Repositories struct {
	Portfolios portfolios.Repository
	Entries    entries.Repository
	Payments   payments.Repository
	SyncMeta   syncmeta.Repository
}

// NewRepositories binds the SQLite repositories to db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Portfolios: portfolios.NewSQLiteRepository(db),
		Entries:    entries.NewSQLiteRepository(db),
		Payments:   payments.NewSQLiteRepository(db),
		SyncMeta:   syncmeta.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local SQLite store, applies migrations, and returns
// the handle plus bound repositories. The connection pool is capped at one
// connection so every mutation shares a single serialized access path.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return nil, nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, NewRepositories(db), nil
}
