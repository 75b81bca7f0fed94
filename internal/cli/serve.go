package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mobilehub/internal/db"
	"mobilehub/internal/router"
	"mobilehub/internal/services"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the collection API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve()
		},
	}
}

func (e *env) serve() error {
	log := e.logger
	log.Info().Msg("Starting MobileHub API")

	database, err := db.InitDB(e.cfg.DBDriver, e.cfg.DBUrl, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database, e.cfg.DBDriver, log); err != nil {
		return err
	}
	if e.cfg.SeedCatalog {
		if err := db.SeedCatalog(database, log); err != nil {
			return err
		}
	}

	bucket, err := services.OpenBucket(e.cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to open upload bucket: %w", err)
	}
	defer bucket.Close()

	server := &http.Server{
		Addr:              ":" + e.cfg.Port,
		Handler:           router.SetupRouter(database, bucket, e.cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on port %s", e.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
