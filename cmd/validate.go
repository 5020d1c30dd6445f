package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/app"
	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/core/topology"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build the scenario topology without running it",
	RunE:  validate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	topo, err := app.BuildTopology(cfg.Grid, cfg.Simulation.Seed)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d components, %d connections\n", cfg.Simulation.Name, topo.Components().Len(), topo.Len())
	for _, kind := range topology.Relations() {
		if n := len(topo.Connections(kind)); n > 0 {
			fmt.Fprintf(out, "  %-26s %d\n", kind, n)
		}
	}
	return nil
}
