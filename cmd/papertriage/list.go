package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var (
		status     string
		page       int
		pageSize   int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate papers",
		Long: `List one page of candidate papers.

Examples:
  papertriage list                     # Pending candidates, page 1
  papertriage list --status all        # Every candidate
  papertriage list --status rejected --page 2
  papertriage list --json              # Output as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := candidate.ParseStatus(status)
			if err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("page-size") {
				if pageSize < 1 || pageSize > backend.MaxPageSize {
					return fmt.Errorf("--page-size must be between 1 and %d", backend.MaxPageSize)
				}
				cfg.PageSize = pageSize
			}

			client := newClient(cfg)
			res, err := client.ListCandidates(context.Background(), st, page, cfg.PageSize)
			if err != nil {
				return connectionHint(err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, res)
			}

			if len(res.Items) == 0 {
				fmt.Fprintln(out, "No candidates found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "#\tPaper\tStatus\tYear\tScore\tTitle\n")
			for _, c := range res.Items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\n",
					c.Rank, c.PaperID, c.EffectiveStatus(), yearString(c.Year), c.RetrievalScore, truncate(c.Title, 60))
			}
			w.Flush()

			s := session.New(session.WithPageSize(cfg.PageSize))
			s.ApplyPage(session.PageData{Status: st, Page: page, Items: res.Items, Total: res.Total})
			fmt.Fprintf(out, "Page %d of %d (%d total)\n", s.Page(), s.TotalPages(), s.Total())
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "pending", "filter by status (pending, accepted, rejected, all)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", session.DefaultPageSize, "candidates per page (default: config page_size)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func yearString(year int) string {
	if year == 0 {
		return "-"
	}
	return fmt.Sprint(year)
}
