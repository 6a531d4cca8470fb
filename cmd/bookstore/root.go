package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkrupp/bookstore/internal/infra/config"
	"github.com/mkrupp/bookstore/internal/infra/logging"
	"github.com/mkrupp/bookstore/internal/repo/user"
	"github.com/mkrupp/bookstore/internal/svc/authsvc"
)

const (
	appName = "bookstore"
	svcName = "api"
)

// Config is read from BOOKSTORE_API_* environment variables, falling back
// to BOOKSTORE_*.
type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig        `envPrefix:"LOG_"`
	Auth  authsvc.AuthConfig          `envPrefix:"AUTH_"`
	HTTP  authsvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	Store user.StoreConfig            `envPrefix:"STORE_"`
}

// MigrateConfig is the subset of Config the migrate command needs.
type MigrateConfig struct {
	config.EnvConfig

	Log   logging.LoggerConfig `envPrefix:"LOG_"`
	Store user.StoreConfig     `envPrefix:"STORE_"`
}

func configPrefix() string {
	return strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
}

func loggerName() string {
	return strings.ToLower(strings.Join([]string{appName, svcName}, "."))
}

// loadConfig parses cfg from the environment and configures logging.
func loadConfig(ctx context.Context, cfg any, logCfg func() logging.LoggerConfig) error {
	if err := config.Parse(ctx, cfg, configPrefix()); err != nil {
		return err //nolint:wrapcheck
	}

	logging.Configure(ctx, logCfg(), loggerName())

	return nil
}

// NewRootCmd creates the root command for the bookstore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Bookstore API server",
		Long: `Bookstore API server. Configuration is read from BOOKSTORE_API_*
environment variables, e.g. BOOKSTORE_API_AUTH_JWT_KEY.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
