package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/vield/calculadora/internal/config"
	"github.com/vield/calculadora/internal/logger"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, rootCmd, fang.WithVersion(version))
	stop()
	if err != nil {
		logger.Error("Command execution failed: %v", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "calculadora",
	Short: "Renovation quote calculator",
	Long: `calculadora walks you through a four step renovation quote request:
type of renovation, works to do, measurements and contact details.

Progress is saved after every change, so an interrupted session continues
where it stopped. Run without a subcommand to open the calculator.`,
	RunE: runCalculator,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig loads configuration and points the logger at it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	logger.Debug("Config loaded: store=%s intake=%s data_dir=%s", cfg.Store, cfg.Intake, cfg.DataDir)
	return cfg, nil
}
