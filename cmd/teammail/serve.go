package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api"
	"github.com/welldanyogia/webrana-teammail-backend/internal/config"
	"github.com/welldanyogia/webrana-teammail-backend/internal/database"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/mailer"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Migrates the database, then serves the API and provider webhooks until SIGINT or SIGTERM",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, log, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}

		files, err := storage.NewLocalStorage(cfg.AttachmentStoragePath)
		if err != nil {
			return fmt.Errorf("failed to initialize attachment storage: %w", err)
		}

		router := api.NewRouter(&api.RouterConfig{
			DB:          db,
			FileStorage: files,
			Transports:  mailer.NewFactory(cfg.MailgunAPIBase),
			Config:      cfg,
			Logger:      log,
			Security:    logger.NewSecurityLogger(log),
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.APIPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info("API server listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			return err
		}
		log.Info("Server stopped")
		return nil
	},
}

// bootstrap loads configuration, installs the logger and connects to the
// database with the configured retries.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	db, err := database.Connect(ctx, cfg.DatabaseURL, database.Options{
		AppEnv:  cfg.AppEnv,
		Retries: cfg.DBConnectRetries,
		Backoff: cfg.DBConnectBackoff,
		Debug:   cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
