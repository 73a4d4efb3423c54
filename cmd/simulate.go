package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ombralis/packdispatch/app"
	"github.com/ombralis/packdispatch/config"
)

var workloadSize int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a one-shot strategy comparison",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&workloadSize, "workload", "w", 30, "workload size in units")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Simulator.Run(context.Background(), workloadSize)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
