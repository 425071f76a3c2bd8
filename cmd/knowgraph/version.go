package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/knowgraph/internal/server"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "knowgraph %s\n", server.Version)
		},
	}
}
