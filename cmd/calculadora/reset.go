package main

import (
	"errors"
	"fmt"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"
	"github.com/vield/calculadora/internal/store"
	"github.com/vield/calculadora/internal/wizard"
)

var resetFlags struct {
	dryRun bool
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the saved calculator progress",
	Long: `Clear the saved calculator progress so the next run starts at step 1.

Use --dry-run to print what would change without clearing anything.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetFlags.dryRun, "dry-run", "n", false, "Show a diff of saved and initial state without clearing")
}

func runReset(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()

	if resetFlags.dryRun {
		current, err := b.store.Get(ctx, wizard.DataKey)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reading %s: %w", wizard.DataKey, err)
		}
		diff, err := resetDiff(current)
		if err != nil {
			return err
		}
		if diff == "" {
			_, _ = fmt.Fprintln(out, "Nothing to reset.")
			return nil
		}
		_, _ = fmt.Fprint(out, diff)
		return nil
	}

	if err := b.persistence().Clear(ctx); err != nil {
		return fmt.Errorf("clearing progress: %w", err)
	}
	_, _ = fmt.Fprintln(out, "Calculator progress cleared.")
	return nil
}

// resetDiff returns a unified diff from the saved data slot to the initial
// state. An empty result means there is nothing to reset.
func resetDiff(current []byte) (string, error) {
	if len(current) == 0 {
		return "", nil
	}
	initial, err := wizard.EncodeState(wizard.InitialState())
	if err != nil {
		return "", err
	}

	before := prettyJSON(current) + "\n"
	after := prettyJSON(initial) + "\n"
	if before == after {
		return "", nil
	}
	return udiff.Unified(wizard.DataKey, "initial", before, after), nil
}
