package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/config"
	"github.com/papertriage/papertriage/internal/session"
	"github.com/spf13/cobra"
)

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <paper_id>",
		Short: "Accept a pending candidate into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecision(cmd, args[0], candidate.LabelAccept, nil, "", false)
		},
	}
}

func rejectCmd() *cobra.Command {
	var (
		tags  []string
		note  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "reject <paper_id>",
		Short: "Reject a pending candidate",
		Long: `Reject a pending candidate, optionally recording why.

Reason tags are checked against reject_reasons in the config unless
--any-tag is given.

Examples:
  papertriage reject 10.1000/xyz123
  papertriage reject 10.1000/xyz123 --tag off-topic --tag outdated
  papertriage reject 10.1000/xyz123 --note "survey, not primary research"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecision(cmd, args[0], candidate.LabelReject, tags, note, force)
		},
	}

	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "reason tag (repeatable)")
	cmd.Flags().StringVarP(&note, "note", "m", "", "free-text note")
	cmd.Flags().BoolVar(&force, "any-tag", false, "allow tags not listed in reject_reasons")
	return cmd
}

func runDecision(cmd *cobra.Command, paperID string, label candidate.Label, tags []string, note string, anyTag bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if label == candidate.LabelReject && !anyTag {
		if err := checkRejectTags(cfg, tags); err != nil {
			return err
		}
	}

	ctx := context.Background()
	r := newReviewer(cfg)
	c, err := r.Focus(ctx, paperID)
	if err != nil {
		return connectionHint(err)
	}
	title := c.Title
	log.Printf("%s %s (query %s)", label, c.PaperID, c.QueryID)

	var out session.Outcome
	if label == candidate.LabelAccept {
		out, err = r.Accept(ctx)
	} else {
		out, err = r.Reject(ctx, tags, note)
	}
	if err != nil {
		var stateErr *session.InvalidStateError
		if errors.As(err, &stateErr) {
			return fmt.Errorf("%s is already %s", stateErr.PaperID, stateErr.Status)
		}
		return err
	}

	verb := "Accepted"
	if out.NewStatus == candidate.StatusRejected {
		verb = "Rejected"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", verb, out.PaperID, truncate(title, 70))
	return nil
}

func checkRejectTags(cfg *config.Config, tags []string) error {
	for _, tag := range tags {
		if !slices.Contains(cfg.RejectReasons, tag) {
			return fmt.Errorf("unknown reason tag %q (configured: %v; use --any-tag to allow)", tag, cfg.RejectReasons)
		}
	}
	return nil
}
