package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func libraryCmd() *cobra.Command {
	var (
		page       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List accepted papers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lib, err := newClient(cfg).ListLibrary(context.Background(), page, cfg.PageSize)
			if err != nil {
				return connectionHint(err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, lib)
			}
			if len(lib.Items) == 0 {
				fmt.Fprintln(out, "Library is empty.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Paper\tYear\tVenue\tAdded\tTitle\n")
			for _, it := range lib.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					it.PaperID, yearString(it.Year), truncate(it.Venue, 20), it.AddedAt, truncate(it.Title, 60))
			}
			w.Flush()
			fmt.Fprintf(out, "%d of %d accepted paper(s)\n", len(lib.Items), lib.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
