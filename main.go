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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"patient-studies-server/internal/config"
	"patient-studies-server/internal/logging"
	"patient-studies-server/internal/models"
	"patient-studies-server/internal/routes"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "patient-studies-server",
		Short:        "Patient and study records API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())
	rootCmd.AddCommand(loadDataCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is what every command needs: configuration, a logger and the database.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *gorm.DB
}

func bootstrap() (*app, error) {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.IsDev())

	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return runServer(a)
		},
	}
}

func runServer(a *app) error {
	if !a.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(a.db, a.cfg, a.log)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("driver", a.cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	a.log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	a.log.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := models.Migrate(cmd.Context(), a.db, a.cfg.Database.Driver, a.log); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			a.log.Info().Str("driver", a.cfg.Database.Driver).Msg("migrations applied")
			return nil
		},
	}
}
