package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/config"
	"github.com/vield/calculadora/internal/lead"
	"github.com/vield/calculadora/internal/store"
	"github.com/vield/calculadora/internal/wizard"
)

// isolate points config lookup at an empty temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	t.Setenv("CALCULADORA_DATA_DIR", filepath.Join(tmp, "data"))
	t.Chdir(tmp)
	return tmp
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	showFlags.raw = false
	resetFlags.dryRun = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func sampleState() wizard.State {
	st := wizard.InitialState()
	st.ReformaType = catalog.Kitchen
	st.SelectedWorks = []string{"Isla de cocina"}
	st.Measurements[catalog.FieldMetros] = 14
	st.Contact = wizard.Contact{Name: "Ana", Phone: "612 345 678"}
	return st
}

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		name   string
		store  string
		intake string
		want   store.Store
	}{
		{"memory", config.StoreMemory, config.IntakeLog, &store.MemoryStore{}},
		{"file", config.StoreFile, config.IntakeLog, &store.FileStore{}},
		{"sqlite", config.StoreSQLite, config.IntakeCommand, &store.SQLiteStore{}},
		{"nats", config.StoreNATS, config.IntakeNATS, &store.NATSStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.Default()
			cfg.DataDir = t.TempDir()
			cfg.Store = tt.store
			cfg.Intake = tt.intake
			cfg.IntakeCommand = "cat > /dev/null"

			b, err := openBackend(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })

			assert.IsType(t, tt.want, b.store)
			assert.Equal(t, tt.store == config.StoreNATS || tt.intake == config.IntakeNATS, b.broker != nil)

			p := b.persistence()
			require.NoError(t, p.Save(ctx, sampleState(), wizard.StepMeasurements))
			r, err := p.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, r.State)
			assert.Equal(t, sampleState(), *r.State)
			assert.Equal(t, wizard.StepMeasurements, r.Step)
		})
	}
}

func TestOpenBackend_Intakes(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Store = config.StoreMemory

	cfg.Intake = config.IntakeCommand
	cfg.IntakeCommand = "true"
	cfg.IntakeTimeout = 5
	b, err := openBackend(ctx, cfg)
	require.NoError(t, err)
	in, ok := b.intake.(*lead.CommandIntake)
	require.True(t, ok)
	assert.Equal(t, "true", in.Command)
	assert.Equal(t, cfg.Timeout(), in.Timeout)
	require.NoError(t, b.Close())

	cfg.Intake = config.IntakeNATS
	b, err = openBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &lead.NATSIntake{}, b.intake)
	require.NoError(t, b.Close())
}

func TestResetDiff(t *testing.T) {
	diff, err := resetDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, diff, "nothing saved")

	initial, err := wizard.EncodeState(wizard.InitialState())
	require.NoError(t, err)
	diff, err = resetDiff(initial)
	require.NoError(t, err)
	assert.Empty(t, diff, "already initial")

	saved, err := wizard.EncodeState(sampleState())
	require.NoError(t, err)
	diff, err = resetDiff(saved)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- "+wizard.DataKey)
	assert.Contains(t, diff, "+++ initial")
	assert.Contains(t, diff, `-  "type": "kitchen",`)
	assert.Contains(t, diff, `+  "type": null,`)
}

func TestSummary(t *testing.T) {
	st := sampleState()
	md := summary(wizard.Restored{State: &st, Step: wizard.StepWorks})
	assert.Contains(t, md, "Reforma Cocina")
	assert.Contains(t, md, "- Isla de cocina")
	assert.Contains(t, md, "| 14 m² |")
	assert.Contains(t, md, "Paso 2 de 4")

	md = summary(wizard.Restored{Step: wizard.StepMeasurements})
	assert.Contains(t, md, "_Ninguno seleccionado_")
	assert.Contains(t, md, "Paso 3 de 4")
}

func TestHighlightJSON(t *testing.T) {
	src := prettyJSON([]byte(`{"type":"full","works":[]}`))
	assert.Equal(t, "{\n  \"type\": \"full\",\n  \"works\": []\n}", src)
	assert.Equal(t, src, ansi.Strip(highlightJSON(src)))
	assert.Equal(t, "not json", prettyJSON([]byte("not json")))
}

func TestRenderMarkdown(t *testing.T) {
	out := ansi.Strip(renderMarkdown("# Presupuesto\n\n- Mampara\n", 80))
	assert.Contains(t, out, "Presupuesto")
	assert.Contains(t, out, "Mampara")
}

func TestShowAndResetCommands(t *testing.T) {
	isolate(t)
	t.Setenv("CALCULADORA_STORE", config.StoreFile)

	assert.Contains(t, execute(t, "show"), "No saved progress.")
	assert.Contains(t, execute(t, "reset", "--dry-run"), "Nothing to reset.")

	cfg, err := config.Load()
	require.NoError(t, err)
	p := wizard.NewKVPersistence(store.NewFileStore(filepath.Join(cfg.DataDir, "state")))
	require.NoError(t, p.Save(context.Background(), sampleState(), wizard.StepContact))

	out := ansi.Strip(execute(t, "show"))
	assert.Contains(t, out, "Reforma Cocina")
	assert.Contains(t, out, "Paso 4 de 4")

	out = ansi.Strip(execute(t, "show", "--raw"))
	assert.Contains(t, out, `"type": "kitchen"`)

	out = execute(t, "reset", "--dry-run")
	assert.Contains(t, out, `-  "type": "kitchen",`)
	r, err := p.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r.State, "dry run keeps the state")

	assert.Contains(t, execute(t, "reset"), "Calculator progress cleared.")
	r, err = p.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Empty())
}

func TestSetupCommand(t *testing.T) {
	tmp := isolate(t)
	setupFlags.project, setupFlags.force, setupFlags.edit = true, false, false
	t.Cleanup(func() { setupFlags.project, setupFlags.force = false, false })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"setup", "--project"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "calculadora.yml")
	assert.FileExists(t, filepath.Join(tmp, "calculadora.yml"))

	rootCmd.SetArgs([]string{"setup", "--project"})
	require.Error(t, rootCmd.Execute(), "refuses to overwrite without --force")

	rootCmd.SetArgs([]string{"setup", "--project", "--force"})
	require.NoError(t, rootCmd.Execute())
}
