package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/papertriage/papertriage/cmd/papertriage/tui"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/config"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI for reviewing candidates",
		Long: `Interactive terminal UI for reviewing candidates.

Candidates are shown one page at a time. Accept with a, reject with r (pick
reasons and add a note), jump to the next pending candidate with n, and fetch
new candidates from the retrieval backend with R. Press ? for all keys.

Set PAPERTRIAGE_DEBUG_LOG (or debug_log in the config) to a file path to
log backend calls while the UI is running.

Examples:
  papertriage tui                     # Pending candidates
  papertriage tui --status all        # Every candidate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdinIsTerminal() {
				return fmt.Errorf("tui requires a terminal; use list, accept and reject in scripts")
			}
			return runTUI(status)
		},
	}

	cmd.Flags().StringVar(&status, "status", "pending", "initial filter (pending, accepted, rejected, all)")
	return cmd
}

func runTUI(status string) error {
	st, err := candidate.ParseStatus(status)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so log lines go to a file or
	// nowhere.
	logPath := os.Getenv("PAPERTRIAGE_DEBUG_LOG")
	if logPath == "" {
		logPath = cfg.DebugLog
	}
	if logPath != "" {
		f, err := tea.LogToFile(logPath, "papertriage")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	return tui.Run(tui.Config{
		ServerAddr:       config.ResolveServerAddr(serverAddr, cfg),
		Client:           newClient(cfg),
		Status:           st,
		PageSize:         cfg.PageSize,
		KeepDecidedInAll: cfg.KeepDecidedInAll,
		RefreshTimeout:   cfg.RefreshTimeout(),
		Refresh: candidate.RefreshRequest{
			MaxResults: cfg.RefreshMaxResults,
			Sources:    cfg.RefreshSources,
		},
		RejectReasons: cfg.RejectReasons,
		GlamourStyle:  cfg.TUI.GlamourStyle,
		HideEvidence:  cfg.TUI.HideEvidence,
		HideScores:    cfg.TUI.HideScores,
	})
}
