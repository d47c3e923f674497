package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axsol/backoffice"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "backoffice version %s\n", backoffice.Version)
		},
	}
}
