package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/bookstore/internal/domain"
	"github.com/mkrupp/bookstore/internal/infra/logging"
)

const sqliteUserColumns = "id, name, email, password_hash, phone_number, address, created_at, updated_at"

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new SQLiteUserRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteUserRepositoryFactory(cfg StoreConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteUserRepository(ctx, cfg)
	}
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository with the given configuration.
// It opens the database and, if cfg.AutoMigrate is set, applies pending migrations.
// Returns an error if database connection or initialization fails.
func NewSQLiteUserRepository(ctx context.Context, cfg StoreConfig) (*SQLiteUserRepository, error) {
	log := logging.GetLogger("repo.user.sqlite_user_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := openSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if _, err := Migrate(ctx, db, DriverSQLite); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("initialize db: %w", err)
		}
	}

	log.DebugContext(ctx, "user repository opened")

	return &SQLiteUserRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

// openSQLite opens path with a busy timeout and WAL journaling set on every
// pooled connection.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	dsn := path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// CreateUser implements Repository.CreateUser using SQLite.
func (r *SQLiteUserRepository) CreateUser(ctx context.Context, user *domain.User) (_ *domain.User, err error) {
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
	created.CreatedAt = time.Now().UTC().Truncate(time.Second)
	created.UpdatedAt = created.CreatedAt

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, phone_number, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.Name,
		created.Email,
		created.PasswordHash,
		created.PhoneNumber,
		created.Address,
		created.CreatedAt.Unix(),
		created.UpdatedAt.Unix(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			}
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	if created.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &created, nil
}

// GetUserByEmail implements Repository.GetUserByEmail using SQLite.
func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sqliteUserColumns+" FROM users WHERE email = ?",
		domain.NormalizeEmail(email),
	)

	return scanSQLiteUser(row)
}

// GetUserByID implements Repository.GetUserByID using SQLite.
func (r *SQLiteUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sqliteUserColumns+" FROM users WHERE id = ?",
		id,
	)

	return scanSQLiteUser(row)
}

func scanSQLiteUser(row *sql.Row) (*domain.User, bool, error) {
	var (
		user                 domain.User
		createdAt, updatedAt int64
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.Address,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &user, true, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteUserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
