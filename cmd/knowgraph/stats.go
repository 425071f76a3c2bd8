package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

func statsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show graph statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, cleanup, err := opts.open(nil)
			defer cleanup()
			if err != nil {
				return err
			}

			stats, err := deps.Store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  Nodes:       %d\n", stats.TotalNodes)
			fmt.Fprintf(out, "  Edges:       %d\n", stats.TotalEdges)
			fmt.Fprintf(out, "  Ref nodes:   %d\n", stats.TotalProxies)

			if len(stats.NodesByType) == 0 {
				return nil
			}
			types := make([]graph.NodeType, 0, len(stats.NodesByType))
			for t := range stats.NodesByType {
				types = append(types, t)
			}
			sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

			fmt.Fprintln(out)
			fmt.Fprintln(out, bold.Sprint("  By type"))
			for _, t := range types {
				fmt.Fprintf(out, "  %-18s %d\n", typeColor(t).Sprint(t), stats.NodesByType[t])
			}
			return nil
		},
	}
}
