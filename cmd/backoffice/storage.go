package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/axsol/backoffice/pkg/adapters/lifecycle"
	"github.com/axsol/backoffice/pkg/core"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [entity...]",
		Short: "Persist the baseline dataset of entities that have no entry yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if _, err := entityArg(name); err != nil {
					return err
				}
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Seed(cmd.Context(), args...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seeded")
			return nil
		},
	}
}

func newKeysCmd(a *app) *cobra.Command {
	var sizes bool
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys held by the storage backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			storage := store.Storage()
			keys, err := core.Keys(ctx, storage)
			if err != nil {
				return err
			}
			if !sizes {
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tBYTES")
			for _, k := range keys {
				value, ok, err := storage.Get(ctx, k)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(w, "%s\t%d\n", k, len(value))
				}
			}
			used, err := core.UsedSpace(ctx, storage)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "total\t%d\n", used)
			fmt.Fprintf(w, "writable\t%t\n", core.Available(ctx, storage))
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&sizes, "sizes", false, "Show value sizes, total usage and whether the backend accepts writes")
	return cmd
}

// watcher is implemented by backends that report changes.
type watcher interface {
	Watch(ctx context.Context) (<-chan core.Event, error)
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [entity...]",
		Short: "Print changes to the persisted collections until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if _, err := entityArg(name); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.open(ctx)
			if err != nil {
				return err
			}
			w, ok := store.Storage().(watcher)
			if !ok {
				return fmt.Errorf("backend %q does not support watching", a.cfg.Storage.Backend)
			}
			events, err := w.Watch(ctx)
			if err != nil {
				return err
			}

			src := lifecycle.NewSource(events, args...)
			if err := src.Start(ctx); err != nil {
				return err
			}
			a.logger.Info("watching for changes", "path", a.cfg.Storage.Path)
			for e := range src.Events() {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return nil
		},
	}
}
