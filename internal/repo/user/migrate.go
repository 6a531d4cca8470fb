package user

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mkrupp/bookstore/internal/infra/logging"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for driver to db.
// Returns the versions that were applied, in order.
func Migrate(ctx context.Context, db *sql.DB, driver string) (_ []int64, err error) {
	log := logging.GetLogger("repo.user.migrate").With("driver", driver)

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "migrate failed", logging.Err(err))
		}
	}()

	var (
		dialect goose.Dialect
		dir     string
	)

	switch driver {
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case DriverPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("new migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	versions := make([]int64, 0, len(results))

	for _, result := range results {
		versions = append(versions, result.Source.Version)

		log.InfoContext(ctx, "migration applied",
			"version", result.Source.Version,
			"path", result.Source.Path,
			"duration", result.Duration,
		)
	}

	return versions, nil
}

// MigrateStore opens the store described by cfg, applies pending
// migrations and closes it again.
func MigrateStore(ctx context.Context, cfg StoreConfig) ([]int64, error) {
	switch cfg.Driver {
	case DriverSQLite:
		db, err := openSQLite(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		return Migrate(ctx, db, DriverSQLite)
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open pool: %w", err)
		}
		defer pool.Close()

		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()

		return Migrate(ctx, db, DriverPostgres)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
