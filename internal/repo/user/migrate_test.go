package user_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/bookstore/internal/repo/user"
)

func TestMigrateStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	//nolint:exhaustruct
	cfg := user.StoreConfig{
		Driver:       user.DriverSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "users.db"),
	}

	applied, err := user.MigrateStore(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, applied)

	applied, err = user.MigrateStore(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrateStore_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	//nolint:exhaustruct
	_, err := user.MigrateStore(context.Background(), user.StoreConfig{Driver: "mysql"})
	require.ErrorIs(t, err, user.ErrUnsupportedDriver)
}

func TestNewRepositoryFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     user.StoreConfig
		wantErr error
	}{
		{
			name: "sqlite",
			//nolint:exhaustruct
			cfg: user.StoreConfig{Driver: user.DriverSQLite, DatabasePath: "x.db"},
		},
		{
			name: "postgres",
			//nolint:exhaustruct
			cfg: user.StoreConfig{Driver: user.DriverPostgres, DatabaseURL: "postgres://localhost/bookstore"},
		},
		{
			name: "postgres without url",
			//nolint:exhaustruct
			cfg:     user.StoreConfig{Driver: user.DriverPostgres},
			wantErr: user.ErrMissingDatabaseURL,
		},
		{
			name: "unknown driver",
			//nolint:exhaustruct
			cfg:     user.StoreConfig{Driver: "mysql"},
			wantErr: user.ErrUnsupportedDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory, err := user.NewRepositoryFactory(tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, factory)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, factory)
		})
	}
}
