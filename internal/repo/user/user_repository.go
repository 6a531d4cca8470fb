package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/bookstore/internal/domain"
)

// Supported StoreConfig.Driver values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrUnsupportedDriver is returned when StoreConfig.Driver names no known backend.
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	// ErrMissingDatabaseURL is returned when the postgres driver is selected without a URL.
	ErrMissingDatabaseURL = errors.New("database url not set")
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser stores a new user and returns it with ID and timestamps assigned.
	// Returns domain.ErrUserAlreadyExists if the email is already registered,
	// compared case-insensitively.
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetUserByEmail retrieves a user by email, compared case-insensitively.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error)

	// GetUserByID retrieves a user by ID.
	// Returns the user object and true if found, or nil and false if not found.
	GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// StoreConfig selects and configures the credential store backend.
type StoreConfig struct {
	// Driver is either "sqlite" or "postgres"
	Driver string `env:"DRIVER" default:"sqlite"`

	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/bookstore.db"`

	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `env:"DATABASE_URL" default:""`

	// AutoMigrate applies pending schema migrations when the store is opened
	AutoMigrate bool `env:"AUTO_MIGRATE" default:"true"`
}

// NewRepositoryFactory returns the factory for the backend named by cfg.Driver.
func NewRepositoryFactory(cfg StoreConfig) (RepositoryFactory, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return SQLiteUserRepositoryFactory(cfg), nil
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}

		return PostgresUserRepositoryFactory(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
