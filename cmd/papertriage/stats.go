package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show candidate counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d := session.FetchPage(context.Background(), newClient(cfg), candidate.StatusPending, 1, 1)
			if d.StatsErr != nil {
				return connectionHint(d.StatsErr)
			}
			stats := *d.Stats

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, struct {
					candidate.Stats
					Total int `json:"total"`
				}{stats, stats.Total()})
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Pending\t%d\n", stats.Pending)
			fmt.Fprintf(w, "Accepted\t%d\n", stats.Accepted)
			fmt.Fprintf(w, "Rejected\t%d\n", stats.Rejected)
			fmt.Fprintf(w, "Total\t%d\n", stats.Total())
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
