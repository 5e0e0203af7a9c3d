package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/catalog"
	"github.com/papapumpkin/foundry/internal/config"
	"github.com/papapumpkin/foundry/internal/conflict"
	"github.com/papapumpkin/foundry/internal/logging"
	"github.com/papapumpkin/foundry/internal/pipeline"
	"github.com/papapumpkin/foundry/internal/tabular"
	"github.com/papapumpkin/foundry/internal/tui"
	"github.com/papapumpkin/foundry/internal/wizard"
)

// session bundles the services one command invocation works against.
type session struct {
	cfg     config.Config
	log     *zap.Logger
	db      *assetdb.DB
	catalog *catalog.Store
	backend catalog.Backend
	source  *tabular.Source
	policy  conflict.Policy
}

// sessionNeeds selects the optional services a command opens. With
// lenient set, an unconfigured catalog or sheet is left nil instead of
// failing the session.
type sessionNeeds struct {
	catalog bool
	source  bool
	lenient bool
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Verbose: cfg.Verbose, Format: format})
}

// openSession loads config, then opens the asset database and whatever
// else needs asks for. The caller must call close.
func openSession(cmd *cobra.Command, needs sessionNeeds) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openSessionWith(cmd, cfg, needs)
}

func openSessionWith(cmd *cobra.Command, cfg config.Config, needs sessionNeeds) (*session, error) {
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	s := &session{cfg: cfg, log: log}

	s.db, err = assetdb.Open(cfg.ProjectRoot, log)
	if err != nil {
		s.close()
		return nil, err
	}
	if needs.catalog && !(needs.lenient && cfg.CatalogPath == "") {
		if err := s.openCatalog(cmd.Context()); err != nil {
			s.close()
			return nil, err
		}
	}
	if needs.source {
		s.source, err = tabular.Open(cfg.Resolve(cfg.TabularSource), log)
		if needs.lenient && errors.Is(err, tabular.ErrNoSource) {
			s.source, err = nil, nil
		}
		if err != nil {
			s.close()
			return nil, err
		}
	}
	s.policy, err = conflictPolicy(cmd)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) openCatalog(ctx context.Context) error {
	b, err := catalog.OpenBackend(ctx, s.cfg.Resolve(s.cfg.CatalogPath))
	if err != nil {
		return err
	}
	store, err := catalog.Open(ctx, b, s.log)
	if err != nil {
		_ = b.Close()
		return err
	}
	s.backend, s.catalog = b, store
	return nil
}

func (s *session) env() wizard.Env {
	return wizard.Env{DB: s.db, Catalog: s.catalog, Source: s.source}
}

func (s *session) pipeline() *pipeline.Pipeline {
	return pipeline.New(s.db, pipeline.PathPolicyFrom(s.cfg), s.policy, s.log,
		pipeline.WithIconMaxSize(s.cfg.Icon.MaxSize))
}

func (s *session) close() {
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.log.Warn("closing catalog backend", zap.Error(err))
		}
	}
	_ = s.log.Sync()
}

// addConflictFlag registers --on-conflict on commands that may overwrite.
func addConflictFlag(cmd *cobra.Command) {
	cmd.Flags().String("on-conflict", "prompt", "overwrite policy: prompt, overwrite or cancel")
}

// conflictPolicy maps --on-conflict to a policy. Prompting uses the
// interactive picker on a terminal and a line prompt otherwise.
func conflictPolicy(cmd *cobra.Command) (conflict.Policy, error) {
	mode := "prompt"
	if f := cmd.Flags().Lookup("on-conflict"); f != nil {
		mode = f.Value.String()
	}
	if mode == "prompt" {
		if conflict.IsTTY(os.Stdin) {
			return tui.NewPrompter(os.Stdin, os.Stderr), nil
		}
		return conflict.NewTerminalPrompter(), nil
	}
	d, err := conflict.ParseDecision(mode)
	if err != nil {
		return nil, fmt.Errorf("--on-conflict: %w", err)
	}
	return conflict.Always(d), nil
}
