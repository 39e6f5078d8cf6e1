package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/popov-vn/ai-agent/internal/persona"
)

// personasCmd lists the persona table
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the expert personas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMETRIC\tSUMMARY")
		for _, identity := range persona.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", identity.ID, identity.DisplayName, identity.MetricField, identity.Summary)
		}
		return w.Flush()
	},
}
