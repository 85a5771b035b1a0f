package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/osse101/SpinVault_Go/internal/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrations returns the embedded goose migrations
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, migrationsDir)
	if err != nil {
		// The directory is compiled in
		panic(err)
	}
	return sub
}

// Migrate applies every pending migration through a database/sql handle
// borrowed from pool
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToOpenMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMigrate, err)
	}

	log := logger.FromContext(ctx)
	if len(results) == 0 {
		log.Info(LogMsgSchemaUpToDate)
		return nil
	}
	for _, r := range results {
		log.Info(LogMsgMigrationApplied, "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
