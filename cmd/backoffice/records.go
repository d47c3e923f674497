package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/axsol/backoffice/pkg/core"
	"github.com/axsol/backoffice/pkg/entities"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity>",
		Short: "Print every record of an entity collection as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := entityArg(args[0])
			if err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			records, err := store.All(cmd.Context(), entity)
			if err != nil {
				a.logger.Warn("degraded read", "entity", entity, "error", err)
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Print one record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := entityArg(args[0])
			if err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := store.Find(cmd.Context(), entity, args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func newSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <entity> <json|->",
		Short: "Create or merge a record and print the stored result",
		Long: `Save a record given as a JSON object, or read it from stdin with "-".
A record whose id matches an existing one is merged into it; without an id the
next free id is assigned. Fields of clients, projects and contracts are
type-checked against their typed records.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := entityArg(args[0])
			if err != nil {
				return err
			}
			payload := []byte(args[1])
			if args[1] == "-" {
				if payload, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			var rec core.Record
			if err := json.Unmarshal(payload, &rec); err != nil {
				return fmt.Errorf("invalid record: %w", err)
			}
			if err := entities.Validate(entity, rec); err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			stored, err := store.Put(cmd.Context(), entity, rec)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stored)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Remove the records with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := entityArg(args[0])
			if err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := store.Remove(cmd.Context(), entity, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s %s: %w", entity, args[1], core.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", entity, args[1])
			return nil
		},
	}
}

func newFilterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <entity> <field=value>...",
		Short: "Print the records matching every criterion",
		Long: `Filter records. Values that parse as JSON (numbers, booleans, quoted strings)
are compared exactly; anything else is a case-insensitive substring match.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := entityArg(args[0])
			if err != nil {
				return err
			}
			criteria, err := parseCriteria(args[1:])
			if err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			records, err := store.Match(cmd.Context(), entity, criteria)
			if err != nil {
				a.logger.Warn("degraded read", "entity", entity, "error", err)
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
}

func parseCriteria(args []string) (core.Record, error) {
	criteria := core.Record{}
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid criterion %q, want field=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		criteria[key] = v
	}
	return criteria, nil
}
