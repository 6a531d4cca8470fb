package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/mkrupp/bookstore/internal/infra/logging"
	"github.com/mkrupp/bookstore/internal/repo/user"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the configured user store.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var cfg MigrateConfig
	if err := loadConfig(ctx, &cfg, func() logging.LoggerConfig { return cfg.Log }); err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	applied, err := user.MigrateStore(ctx, cfg.Store)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").
			With("operation", "run migrations", "driver", cfg.Store.Driver).
			Wrap(err)
	}

	if len(applied) == 0 {
		cmd.Println("Schema is up to date")

		return nil
	}

	for _, version := range applied {
		cmd.Printf("Applied migration %05d\n", version)
	}

	cmd.Println("Migrations completed successfully")

	return nil
}
