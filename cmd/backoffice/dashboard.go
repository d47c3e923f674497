package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/axsol/backoffice/pkg/dashboard"
)

func newKPICmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Print the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			kpis, err := dashboard.New(store).KPIs(cmd.Context())
			if err != nil {
				a.logger.Warn("degraded dashboard read", "error", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), kpis)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "clients=%d\n", kpis.Clients)
			fmt.Fprintf(out, "projects=%d\n", kpis.Projects)
			fmt.Fprintf(out, "active_projects=%d\n", kpis.ActiveProjects)
			fmt.Fprintf(out, "contracts=%d\n", kpis.Contracts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newRecentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "recent <clients|projects|contracts>",
		Short:     "Print the most recent records of a dashboard list",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clients", "projects", "contracts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			d := dashboard.New(store)
			ctx := cmd.Context()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			switch args[0] {
			case "clients":
				rows, err := d.RecentClients(ctx)
				if err != nil {
					a.logger.Warn("degraded dashboard read", "error", err)
				}
				fmt.Fprintln(w, "ID\tNOMBRE\tEMPRESA\tFECHA")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Nombre, r.Empresa, r.Fecha)
				}
			case "projects":
				rows, err := d.RecentProjects(ctx)
				if err != nil {
					a.logger.Warn("degraded dashboard read", "error", err)
				}
				fmt.Fprintln(w, "ID\tNOMBRE\tCLIENTE\tESTADO")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Nombre, r.Cliente, r.Estado)
				}
			case "contracts":
				rows, err := d.RecentContracts(ctx)
				if err != nil {
					a.logger.Warn("degraded dashboard read", "error", err)
				}
				fmt.Fprintln(w, "ID\tPROYECTO\tVALOR")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Proyecto, r.Valor)
				}
			}
			return w.Flush()
		},
	}
	return cmd
}
