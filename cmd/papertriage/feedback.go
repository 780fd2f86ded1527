package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func feedbackCmd() *cobra.Command {
	var (
		since      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "List recorded decisions",
		Long: `List accept/reject decisions recorded by the backend.

--since takes an RFC 3339 timestamp or a duration such as 24h.

Examples:
  papertriage feedback
  papertriage feedback --since 24h
  papertriage feedback --since 2025-01-01T00:00:00Z --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceArg, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			events, err := newClient(cfg).ListFeedback(context.Background(), sinceArg)
			if err != nil {
				return connectionHint(err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, events)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No feedback recorded.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Time\tLabel\tPaper\tReasons\tNote\n")
			for _, e := range events {
				note := ""
				if e.FreeText != nil {
					note = truncate(*e.FreeText, 40)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt, e.Label, e.PaperID, strings.Join(e.ReasonTags, ","), note)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only decisions after this time (RFC 3339 or duration)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// parseSince accepts an RFC 3339 timestamp or a Go duration measured back
// from now, and returns the timestamp the backend expects.
func parseSince(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return "", fmt.Errorf("invalid --since %q: want RFC 3339 time or positive duration", s)
	}
	return now.Add(-d).UTC().Format(time.RFC3339), nil
}
