package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/catalog"
	"github.com/papapumpkin/foundry/internal/config"
	"github.com/papapumpkin/foundry/internal/tabular"
	"github.com/papapumpkin/foundry/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the project, shader, sheet and catalog are usable",
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.New()
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err := newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck // stderr sync errors are not actionable
		ok := true

		db, err := assetdb.Open(cfg.ProjectRoot, log)
		if err != nil {
			printer.Error("project: %v", err)
			return err
		}
		printer.Success("project %s (%d models, %d prefabs)",
			db.Root(), len(db.List(assetdb.KindModel)), len(db.List(assetdb.KindPrefab)))

		if cfg.DefaultShader == "" {
			printer.Warn("default_shader is not set")
		} else if _, _, err := db.LoadShader(cfg.DefaultShader); err != nil {
			printer.Error("default_shader: %v", err)
			ok = false
		} else {
			printer.Success("shader %s", cfg.DefaultShader)
		}

		src, err := tabular.Open(cfg.Resolve(cfg.TabularSource), log)
		switch {
		case errors.Is(err, tabular.ErrNoSource):
			printer.Warn("tabular_source is not set")
		case err != nil:
			printer.Error("tabular_source: %v", err)
			ok = false
		default:
			printer.Success("sheet %s (%d rows)", cfg.TabularSource, src.Len())
		}

		if cfg.CatalogPath == "" {
			printer.Warn("catalog_path is not set")
		} else if n, err := checkCatalog(cmd, cfg); err != nil {
			printer.Error("catalog: %v", err)
			ok = false
		} else {
			printer.Success("catalog %s (%d entries)", cfg.CatalogPath, n)
		}

		if !ok {
			return errors.New("validation failed")
		}
		return nil
	},
}

func checkCatalog(cmd *cobra.Command, cfg config.Config) (int, error) {
	b, err := catalog.OpenBackend(cmd.Context(), cfg.Resolve(cfg.CatalogPath))
	if err != nil {
		return 0, err
	}
	defer b.Close()
	store, err := catalog.Open(cmd.Context(), b, nil)
	if err != nil {
		return 0, err
	}
	return store.Len(), nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
