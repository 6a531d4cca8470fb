package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/mkrupp/bookstore/internal/infra/logging"
	http_ "github.com/mkrupp/bookstore/internal/infra/transport/http"
	"github.com/mkrupp/bookstore/internal/repo/user"
	"github.com/mkrupp/bookstore/internal/svc/authsvc"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server serving signup, login, current user and
logout under the configured route prefix, plus /health and /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var cfg Config
			if err := loadConfig(ctx, &cfg, func() logging.LoggerConfig { return cfg.Log }); err != nil {
				return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
			}

			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.bookstore.serve")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "server failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	repoFactory, err := user.NewRepositoryFactory(cfg.Store)
	if err != nil {
		return fmt.Errorf("new repository factory: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	authSvc, err := authsvc.NewAuthService(ctx, repoFactory, cfg.Auth, authsvc.NewMetrics(reg))
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	defer func() {
		if closeErr := authSvc.Close(); closeErr != nil {
			log.WarnContext(ctx, "close auth service", logging.Err(closeErr))
		}
	}()

	cookie, err := authsvc.NewSessionCookie(cfg.Auth.Cookie, authSvc.Tokens.Lifetime(), cfg.Auth.SecureCookies())
	if err != nil {
		return fmt.Errorf("new session cookie: %w", err)
	}

	handler := http_.NewHandler(cfg.HTTP.HTTPTransportConfig, reg, authsvc.NewHTTPTransport(authSvc, cookie, cfg.HTTP))

	log.InfoContext(ctx, "listening",
		"addr", cfg.HTTP.ServerAddr,
		"prefix", cfg.HTTP.RoutePrefix,
		"store", cfg.Store.Driver,
	)

	if err := http_.ListenAndServe(ctx, handler, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
