package main

import (
	"fmt"

	"github.com/papertriage/papertriage/internal/version"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show papertriage version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "papertriage %s\n", version.Full())
		},
	}
}
