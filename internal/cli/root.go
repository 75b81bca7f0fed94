// Package cli is the mobilehub command line: the collection API server and a
// storefront client that keeps its session in a local store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"mobilehub/internal/config"
	"mobilehub/internal/localstore"
	"mobilehub/internal/logger"
	"mobilehub/internal/storefront"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type env struct {
	loadConfig func() config.Config
	cfg        config.Config
	logger     zerolog.Logger
}

func Execute() error {
	return NewRootCommand(config.LoadConfig).Execute()
}

func NewRootCommand(loadConfig func() config.Config) *cobra.Command {
	e := &env{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:          "mobilehub",
		Short:        "MobileHub storefront and collection API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = e.loadConfig()
			e.logger = logger.InitLogger(e.cfg.LogLevel)
		},
	}

	root.AddCommand(
		newServeCommand(e),
		newAuthCommand(e),
		newCatalogCommand(e),
		newCartCommand(e),
		newOrdersCommand(e),
		newAdminCommand(e),
	)
	return root
}

// withApp opens the local store, restores the session and runs fn.
func (e *env) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *storefront.App) error) error {
	store, err := localstore.OpenSQLite(e.cfg.LocalStore)
	if err != nil {
		return err
	}

	app, err := storefront.New(e.cfg, store, e.logger)
	if err != nil {
		store.Close()
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Restore(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("Could not restore cart")
	}
	return fn(ctx, app)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
