package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

func nodesCmd(opts *rootOptions) *cobra.Command {
	var (
		nodeType string
		query    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"ls"},
		Short:   "List nodes, colored by type",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, cleanup, err := opts.open(nil)
			defer cleanup()
			if err != nil {
				return err
			}

			nodes, err := deps.Store.ListNodes(cmd.Context(), graph.NodeFilter{
				Type:  graph.NodeType(nodeType),
				Query: query,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(nodes) == 0 {
				fmt.Fprintln(out, "No nodes found.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, bold.Sprint("ID")+"\t"+bold.Sprint("TYPE")+"\t"+bold.Sprint("TITLE"))
			for _, n := range nodes {
				title := n.Title
				if n.IsProxy() {
					title += " " + subtle.Sprintf("(%s)", n.RefKey)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", n.ID, typeColor(n.Type).Sprint(n.Type), title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&nodeType, "type", "t", "", "Only nodes of this type")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only nodes whose title or content contains this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum nodes (default: the store page size)")
	return cmd
}
