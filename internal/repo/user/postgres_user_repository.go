package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mkrupp/bookstore/internal/domain"
	"github.com/mkrupp/bookstore/internal/infra/logging"
)

const postgresUserColumns = "id, name, email, password_hash, phone_number, address, created_at, updated_at"

// poolIface is the subset of *pgxpool.Pool used by PostgresUserRepository.
// pgxmock.PgxPoolIface satisfies it in tests.
type poolIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresUserRepository implements Repository using PostgreSQL as the storage backend.
type PostgresUserRepository struct {
	pool poolIface
	log  logging.Logger
}

var _ Repository = (*PostgresUserRepository)(nil)

// PostgresUserRepositoryFactory creates a factory function that returns a new PostgresUserRepository.
func PostgresUserRepositoryFactory(cfg StoreConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewPostgresUserRepository(ctx, cfg)
	}
}

// NewPostgresUserRepository connects to cfg.DatabaseURL and, if cfg.AutoMigrate
// is set, applies pending migrations.
func NewPostgresUserRepository(ctx context.Context, cfg StoreConfig) (*PostgresUserRepository, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if cfg.AutoMigrate {
		db := stdlib.OpenDBFromPool(pool)

		_, err := Migrate(ctx, db, DriverPostgres)
		_ = db.Close()

		if err != nil {
			pool.Close()

			return nil, fmt.Errorf("initialize db: %w", err)
		}
	}

	return NewPostgresUserRepositoryFromPool(pool), nil
}

// NewPostgresUserRepositoryFromPool wraps an existing pool.
func NewPostgresUserRepositoryFromPool(pool poolIface) *PostgresUserRepository {
	return &PostgresUserRepository{
		pool: pool,
		log:  logging.GetLogger("repo.user.postgres_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser using PostgreSQL.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (_ *domain.User, err error) {
	log := r.log.With(logging.Group("user", "email", user.Email))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "insert user failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "user inserted")
		}
	}()

	created := *user
	created.Email = domain.NormalizeEmail(user.Email)

	err = r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, phone_number, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		created.Name,
		created.Email,
		created.PasswordHash,
		created.PhoneNumber,
		created.Address,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	created.CreatedAt = created.CreatedAt.UTC()
	created.UpdatedAt = created.UpdatedAt.UTC()

	return &created, nil
}

// GetUserByEmail implements Repository.GetUserByEmail using PostgreSQL.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+postgresUserColumns+" FROM users WHERE LOWER(email) = $1",
		domain.NormalizeEmail(email),
	)

	return scanPostgresUser(row)
}

// GetUserByID implements Repository.GetUserByID using PostgreSQL.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+postgresUserColumns+" FROM users WHERE id = $1",
		id,
	)

	return scanPostgresUser(row)
}

func scanPostgresUser(row pgx.Row) (*domain.User, bool, error) {
	var user domain.User

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.Address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return &user, true, nil
}

// Close implements Repository.Close by closing the connection pool.
func (r *PostgresUserRepository) Close() error {
	r.pool.Close()

	return nil
}
