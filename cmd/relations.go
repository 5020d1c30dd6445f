package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/core/sim"
	"github.com/kilianp07/gridsim/core/topology"
)

var relationsCmd = &cobra.Command{
	Use:   "relations",
	Short: "List relation kinds, categories and pluggable module types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "relations:")
		for _, kind := range topology.Relations() {
			src, dst, _ := topology.Endpoints(kind)
			fmt.Fprintf(out, "  %-26s %s -> %s\n", kind, src, dst)
		}
		cats := make([]string, 0, len(topology.Categories()))
		for _, c := range topology.Categories() {
			cats = append(cats, string(c))
		}
		fmt.Fprintf(out, "categories: %s\n", strings.Join(cats, ", "))
		fmt.Fprintf(out, "recorders: %s\n", strings.Join(sim.RecorderTypes(), ", "))
		fmt.Fprintf(out, "metrics sinks: %s\n", strings.Join(coremetrics.MetricsSinkTypes(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(relationsCmd)
}
