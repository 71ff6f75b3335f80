package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog/config"
	"blog/domain"
	"blog/handler"
	"blog/store"

	"github.com/golang-migrate/migrate/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/crypto/bcrypt"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blog",
		Short: "Blog content API",
		Long: `A JSON API serving blog posts filed under categories.

Configuration is read from the environment (ENV, ADDRESS_LISTEN, DB_DRIVER,
DB_URL, JWT_SECRET, ENABLE_SIGNUP, WHITELIST_HOST, CERT_CACHE_DIR, TOKEN_TTL,
LOG_LEVEL).`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateUserCmd(), newDeleteUserCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations and exit.

Examples:
  blog migrate          # apply every pending migration
  blog migrate --down   # roll back the last migration`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			s, err := store.Open(cmd.Context(), cfg.DBDriver, cfg.DBURL)
			if err != nil {
				return err
			}
			defer s.Close()
			if down {
				if err := s.MigrateDown(); err != nil {
					return fmt.Errorf("roll back migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the last migration")
				return nil
			}
			err = s.Migrate()
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Fprintln(cmd.OutOrStdout(), "Database schema already in latest version")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema migrated")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back the most recent migration")
	return cmd
}

func newCreateUserCmd() *cobra.Command {
	var username, password string
	var admin bool
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user, optionally with admin rights",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidatePassword(password); err != nil {
				return err
			}
			if err := (domain.User{Username: username}).ValidateUsername(); err != nil {
				return err
			}
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u, err := s.CreateUser(cmd.Context(), username, hashedPassword, admin)
			if err != nil {
				return fmt.Errorf("create user %q: %w", username, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %q with id %d\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username of the new user")
	cmd.Flags().StringVar(&password, "password", "", "Password of the new user")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newDeleteUserCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "deleteuser",
		Short: "Delete a user together with every post it owns",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.GetUserByUsername(cmd.Context(), username)
			if err != nil {
				return fmt.Errorf("find user %q: %w", username, err)
			}
			if err := s.DeleteUser(cmd.Context(), u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %q and %d posts\n", u.Username, len(u.PostIDs))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username of the user to delete")
	cmd.MarkFlagRequired("username")
	return cmd
}

// openStore opens the configured database with its schema up to date.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return setupDB(ctx, cfg)
}

func setupDB(ctx context.Context, cfg config.Config) (*store.Store, error) {
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	log.Info("Running database schema migrations...")
	err = s.Migrate()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No database schema migration ran. Database schema already in latest version")
		return s, nil
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("error during database schema migration: %w", err)
	}
	return s, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	lvl, err := logLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	s, err := setupDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	h := handler.Handler{
		Store:        s,
		JWTSecret:    cfg.JWTSecret,
		EnableSignup: cfg.EnableSignup,
		Environment:  cfg.Environment,
		TokenTTL:     cfg.TokenTTL,
	}
	e := h.NewEcho()
	e.Logger.SetLevel(lvl)

	start := func() error { return e.Start(cfg.Address) }
	if cfg.AutoTLS() {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache(cfg.CertCacheDir)
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		start = func() error { return e.StartAutoTLS(":443") }
	}

	errc := make(chan error, 1)
	go func() { errc <- start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func logLevel(name string) (log.Lvl, error) {
	switch name {
	case "debug":
		return log.DEBUG, nil
	case "info", "":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
