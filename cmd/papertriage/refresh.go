package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
	"github.com/spf13/cobra"
)

func refreshCmd() *cobra.Command {
	var (
		maxResults int
		sources    []string
		timeout    int
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask the backend to retrieve new candidates",
		Long: `Trigger a retrieval round on the backend and report how many new
candidates it added. The command gives up after the refresh timeout; the
backend may still finish the round and its candidates appear on the next
listing.

Examples:
  papertriage refresh
  papertriage refresh --max-results 10 --source arxiv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-results") {
				cfg.RefreshMaxResults = maxResults
			}
			if cmd.Flags().Changed("source") {
				cfg.RefreshSources = sources
			}
			if cmd.Flags().Changed("timeout") {
				cfg.RefreshTimeoutSeconds = timeout
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fmt.Fprintln(cmd.ErrOrStderr(), "Refreshing candidates...")
			r := newReviewer(cfg)
			res, err := r.Refresh(ctx, candidate.RefreshRequest{
				MaxResults: cfg.RefreshMaxResults,
				Sources:    cfg.RefreshSources,
			})
			var timeoutErr *session.TimeoutError
			switch {
			case errors.As(err, &timeoutErr):
				return fmt.Errorf("%w; the backend may still add candidates", err)
			case err != nil && res.Success:
				// Refresh succeeded but the follow-up listing failed.
				printRefreshResult(cmd, res)
				return connectionHint(err)
			case err != nil:
				return connectionHint(err)
			}

			printRefreshResult(cmd, res)
			fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", r.Session().Stats().Pending)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 5, "results to request per source (default: config refresh_max_results)")
	cmd.Flags().StringArrayVar(&sources, "source", nil, "retrieval source (repeatable; default: config refresh_sources)")
	cmd.Flags().IntVar(&timeout, "timeout", 60, "seconds to wait (default: config refresh_timeout_seconds)")
	return cmd
}

func printRefreshResult(cmd *cobra.Command, res candidate.RefreshResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added %d new candidate(s)", res.Added)
	if res.QueryID != "" {
		fmt.Fprintf(out, " (query %s)", res.QueryID)
	}
	fmt.Fprintln(out)
	if len(res.BySource) > 0 {
		names := make([]string, 0, len(res.BySource))
		for name := range res.BySource {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s: %d\n", name, res.BySource[name])
		}
	}
}
