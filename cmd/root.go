package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/app"
	"github.com/kilianp07/gridsim/config"
	"github.com/kilianp07/gridsim/infra/logger"
)

var (
	cfgPath     string
	summaryPath string
	chartPath   string
)

var rootCmd = &cobra.Command{
	Use:           "gridsim",
	Short:         "Discrete-time smart grid simulator",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the configured scenario",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "scenario.yaml", "scenario file (yaml or json)")
	runCmd.Flags().StringVar(&summaryPath, "summary", "", "write per-tick summaries to this CSV file")
	runCmd.Flags().StringVar(&chartPath, "chart", "", "render per-tick summaries as an HTML chart")
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	if err := svc.Run(ctx); err != nil {
		return err
	}
	if summaryPath != "" {
		if err := svc.WriteSummary(summaryPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tick summaries to %s\n", len(svc.Summaries()), summaryPath)
	}
	if chartPath != "" {
		if err := svc.WriteChart(chartPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote chart to %s\n", chartPath)
	}
	return nil
}
