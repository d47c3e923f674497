package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/axsol/backoffice/internal/config"
	"github.com/axsol/backoffice/internal/logging"
	"github.com/axsol/backoffice/internal/platform"
	"github.com/axsol/backoffice/pkg/core"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath  string
	backend     string
	path        string
	fixturesDir string
	verbose     bool

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
	store     *core.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "backoffice",
		Short: "Entity store of the AXSOL DaaS back-office",
		Long: `backoffice manages the back-office entity collections (clients, projects,
contracts, ...) persisted in a key-value store, falling back to fixture data
until a collection has been written.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: backoffice.yaml of the enclosing project)")
	flags.StringVar(&a.backend, "backend", "", "Storage backend: memory, fs or sqlite")
	flags.StringVar(&a.path, "path", "", "Storage path (directory for fs, database file for sqlite)")
	flags.StringVar(&a.fixturesDir, "fixtures", "", "Directory holding data/<entity>.json fixtures")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newSaveCmd(a),
		newDeleteCmd(a),
		newFilterCmd(a),
		newSeedCmd(a),
		newKPICmd(a),
		newRecentCmd(a),
		newKeysCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = platform.FindConfig(wd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Storage.Backend = a.backend
	}
	if a.path != "" {
		cfg.Storage.Path = a.path
	}
	if a.fixturesDir != "" {
		cfg.Fixtures.Dir = a.fixturesDir
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger, a.logCloser = logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	slog.SetDefault(a.logger)
	return nil
}

// open builds the store on first use so that commands like version never touch storage.
func (a *app) open(ctx context.Context) (*core.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := platform.FromConfig(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *app) teardown() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logCloser != nil {
		if cerr := a.logCloser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// entityArg validates the entity name against the closed set.
func entityArg(name string) (string, error) {
	if !core.IsEntity(name) {
		return "", fmt.Errorf("unknown entity %q (valid: %v)", name, core.Entities())
	}
	return name, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
