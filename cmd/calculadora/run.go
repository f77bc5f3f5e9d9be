package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vield/calculadora/internal/tui/calculator"
	"github.com/vield/calculadora/internal/wizard"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the quote calculator",
	RunE:  runCalculator,
}

func runCalculator(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	open := func(ctx context.Context) *wizard.Wizard {
		return wizard.Open(ctx, b.persistence(), b.intake)
	}
	return calculator.Run(ctx, open)
}
