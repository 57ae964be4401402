// @title Pet Vaccination Schedule API
// @version 1.0
// @description Dueños, mascotas, catálogo de vacunas e historial de vacunación con próximas dosis.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	jwtauth "pet-vaccination-schedule/internal/adapters/auth/jwt"
	"pet-vaccination-schedule/internal/adapters/auth/odin"
	pg "pet-vaccination-schedule/internal/adapters/storage/postgres"
	"pet-vaccination-schedule/internal/platform/config"
	"pet-vaccination-schedule/internal/platform/logger"
	"pet-vaccination-schedule/internal/platform/metrics"
	"pet-vaccination-schedule/internal/ports/auth"
	"pet-vaccination-schedule/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "petvax",
		Short:         "Pet vaccination schedule API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// sin subcomando => serve
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema (DB_DSN)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return migrate(cmd.Context())
			},
		},
		tokenCmd(),
	)

	return cmd
}

// tokenCmd emite un JWT firmado con JWT_SECRET, para probar AUTH_MODE=jwt en local.
func tokenCmd() *cobra.Command {
	var (
		userID  string
		email   string
		isStaff bool
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development JWT (AUTH_MODE=jwt)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			v, err := jwtauth.NewVerifier(jwtauth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
			if err != nil {
				return err
			}
			tok, err := v.Sign(auth.Claims{UserID: userID, Email: email, IsStaff: isStaff}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID (sub)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().BoolVar(&isStaff, "staff", false, "Mark the identity as staff")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	if cfg.AuthMode == config.AuthModeDev {
		log.Warn("AUTH_MODE=dev: identity comes from X-Debug-* headers, any client can act as staff", nil)
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			if err := pg.Migrate(ctx, db); err != nil {
				return err
			}
		}
		log.Info("storage ready", logger.Fields{"driver": "postgres"})
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier:       verifier,
			DB:                 db,
			Logger:             log,
			Metrics:            metrics.New(),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", logger.Fields{"addr": srv.Addr, "auth_mode": string(cfg.AuthMode)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}

	db, err := pg.Open(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db); err != nil {
		return err
	}
	newLogger(cfg).Info("schema applied", nil)
	return nil
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

// newVerifier: nil en modo dev (el middleware usa los headers X-Debug-*).
func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return jwtauth.NewVerifier(jwtauth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	case config.AuthModeOdin:
		client, err := odin.NewClient(odin.Config{
			BaseURL: cfg.OdinBaseURL,
			APIKey:  cfg.OdinAPIKey,
			Timeout: cfg.OdinTimeout,
		})
		if err != nil {
			return nil, err
		}
		return odin.NewVerifier(client), nil
	default:
		return nil, nil
	}
}
