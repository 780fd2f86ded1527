package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Check for exitError to exit with specific code without extra output
		if exitErr, ok := err.(*exitError); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "papertriage",
		Short: "Review candidate papers from the triage backend",
		Long: `papertriage pages through candidate papers found by the retrieval backend
and records accept/reject decisions as training feedback.

Run without a subcommand in a terminal to open the interactive reviewer.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdinIsTerminal() {
				return cmd.Help()
			}
			return runTUI("pending")
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "backend address (default: $PAPERTRIAGE_SERVER, config, then http://127.0.0.1:8000)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(acceptCmd())
	rootCmd.AddCommand(rejectCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(feedbackCmd())
	rootCmd.AddCommand(libraryCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}
