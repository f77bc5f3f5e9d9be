package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vield/calculadora/internal/lead"
	"github.com/vield/calculadora/internal/store"
	"github.com/vield/calculadora/internal/wizard"
)

var showFlags struct {
	raw bool
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved calculator progress",
	Long: `Show the calculator progress saved by the last session.

By default the progress is rendered as a summary. Use --raw to print the
stored JSON slot instead.`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showFlags.raw, "raw", false, "Print the stored JSON instead of a summary")
}

func runShow(cmd *cobra.Command, args []string) error {
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

	if showFlags.raw {
		data, err := b.store.Get(ctx, wizard.DataKey)
		if errors.Is(err, store.ErrNotFound) {
			_, _ = fmt.Fprintln(out, "No saved progress.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", wizard.DataKey, err)
		}
		_, _ = fmt.Fprintln(out, highlightJSON(prettyJSON(data)))
		return nil
	}

	r, err := b.persistence().Load(ctx)
	if err != nil {
		return err
	}
	if r.Empty() {
		_, _ = fmt.Fprintln(out, "No saved progress.")
		return nil
	}

	_, _ = fmt.Fprintln(out, renderMarkdown(summary(r), 80))
	return nil
}

// summary renders restored progress as markdown.
func summary(r wizard.Restored) string {
	st := wizard.InitialState()
	if r.State != nil {
		st = *r.State
	}
	step := r.Step
	if !step.Valid() {
		step = wizard.FirstStep
	}
	return fmt.Sprintf("%s\n_Paso %d de %d: %s_\n", lead.Markdown(st.Lead()), step, wizard.LastStep, step)
}
