package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/lead"
	"github.com/vield/calculadora/internal/store"
)

// countingPersistence records saves on top of a memory-backed KVPersistence.
type countingPersistence struct {
	*KVPersistence
	saves []Step
}

func (c *countingPersistence) Save(ctx context.Context, s State, step Step) error {
	c.saves = append(c.saves, step)
	return c.KVPersistence.Save(ctx, s, step)
}

func newTestWizard(t *testing.T, intake lead.Intake) (*Wizard, *countingPersistence) {
	t.Helper()
	p := &countingPersistence{KVPersistence: NewKVPersistence(store.NewMemoryStore())}
	return Open(context.Background(), p, intake), p
}

// fillToContact walks a fresh wizard to step 4 with a bathroom selection.
func fillToContact(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SelectReformaType(catalog.Bathroom))
	require.True(t, w.Next())
	_, err := w.ToggleWork("Mampara")
	require.NoError(t, err)
	require.True(t, w.Next())
	_, err = w.Increment(catalog.FieldMetros)
	require.NoError(t, err)
	require.True(t, w.Next())
	require.Equal(t, StepContact, w.Step())
}

func TestOpen_Initial(t *testing.T) {
	w, p := newTestWizard(t, nil)

	assert.Equal(t, StepType, w.Step())
	s := w.State()
	assert.Equal(t, catalog.None, s.ReformaType)
	assert.Empty(t, s.SelectedWorks)
	assert.Equal(t, map[string]int{"metros": 0, "baños": 0, "ventanas": 0, "puertas": 0}, s.Measurements)
	assert.Equal(t, Contact{}, s.Contact)
	assert.Empty(t, p.saves, "opening never writes")
}

func TestSelectReformaType_SwitchClearsWorks(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	require.NoError(t, w.SelectReformaType(catalog.Bathroom))
	_, err := w.ToggleWork("Cambiar suelo")
	require.NoError(t, err)

	require.NoError(t, w.SelectReformaType(catalog.Kitchen))
	assert.Empty(t, w.State().SelectedWorks)
	assert.Equal(t, catalog.Kitchen, w.State().ReformaType)
}

func TestSelectReformaType_SameTypeKeepsWorks(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	require.NoError(t, w.SelectReformaType(catalog.Full))
	_, err := w.ToggleWork("Pintar piso")
	require.NoError(t, err)

	require.NoError(t, w.SelectReformaType(catalog.Full))
	assert.Equal(t, []string{"Pintar piso"}, w.State().SelectedWorks)
}

func TestSelectReformaType_SwitchClampsMeasurements(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	require.NoError(t, w.SelectReformaType(catalog.Full))
	for range 100 {
		_, err := w.Increment(catalog.FieldMetros)
		require.NoError(t, err)
	}
	require.Equal(t, 500, w.State().Measurement(catalog.FieldMetros))

	require.NoError(t, w.SelectReformaType(catalog.Bathroom))
	assert.Equal(t, 25, w.State().Measurement(catalog.FieldMetros))
	assert.Equal(t, map[string]int{"metros": 25}, w.State().Lead().Measurements)
}

func TestSelectReformaType_SwitchKeepsUntouchedFields(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	require.NoError(t, w.SelectReformaType(catalog.Full))
	require.NoError(t, w.SelectReformaType(catalog.Kitchen))
	assert.Equal(t, 0, w.State().Measurement(catalog.FieldMetros))
}

func TestSelectReformaType_Unknown(t *testing.T) {
	w, p := newTestWizard(t, nil)
	err := w.SelectReformaType("garage")
	require.ErrorIs(t, err, ErrUnknownType)
	assert.Empty(t, p.saves)
}

func TestToggleWork(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	_, err := w.ToggleWork("Mampara")
	require.ErrorIs(t, err, ErrNoReformaType)

	require.NoError(t, w.SelectReformaType(catalog.Bathroom))

	_, err = w.ToggleWork("Isla de cocina")
	require.ErrorIs(t, err, ErrUnknownWork)

	for _, label := range []string{"Mampara", "Cambiar suelo", "Alicatar paredes"} {
		selected, err := w.ToggleWork(label)
		require.NoError(t, err)
		assert.True(t, selected)
	}
	selected, err := w.ToggleWork("Cambiar suelo")
	require.NoError(t, err)
	assert.False(t, selected)

	assert.Equal(t, []string{"Mampara", "Alicatar paredes"}, w.State().SelectedWorks, "selection order preserved")
}

func TestAdjustMeasurement_Clamps(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	// Start at 25 and push past the top.
	for range 30 {
		w.AdjustMeasurement("metros", Increment, 1, 1, 25)
	}
	assert.Equal(t, 25, w.State().Measurement("metros"))
	assert.Equal(t, 25, w.AdjustMeasurement("metros", Increment, 1, 1, 25))

	for range 30 {
		w.AdjustMeasurement("metros", Decrement, 1, 1, 25)
	}
	assert.Equal(t, 1, w.AdjustMeasurement("metros", Decrement, 1, 1, 25))
}

func TestAdjustMeasurement_FromZeroBelowMin(t *testing.T) {
	w, _ := newTestWizard(t, nil)
	// Bathroom metros starts at 0, below its minimum of 1.
	assert.Equal(t, 1, w.AdjustMeasurement("metros", Decrement, 1, 1, 25))
}

func TestIncrementDecrement_UseCatalogBounds(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	// No type selected: full-renovation fields apply.
	v, err := w.Increment(catalog.FieldMetros)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = w.Decrement(catalog.FieldBanos)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	for range 15 {
		_, err = w.Increment(catalog.FieldBanos)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, w.State().Measurement(catalog.FieldBanos))

	require.NoError(t, w.SelectReformaType(catalog.Kitchen))
	_, err = w.Increment(catalog.FieldPuertas)
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestSetContactField(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	require.NoError(t, w.SetContactField(ContactName, "  Ana  "))
	require.NoError(t, w.SetContactField(ContactPhone, "612 345 678"))
	assert.Equal(t, Contact{Name: "  Ana  ", Phone: "612 345 678"}, w.State().Contact, "stored verbatim")

	require.ErrorIs(t, w.SetContactField("email", "a@b.c"), ErrUnknownContactField)
}

func TestCanAdvance(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	assert.False(t, w.CanAdvance(StepType))
	require.NoError(t, w.SelectReformaType(catalog.Kitchen))
	assert.True(t, w.CanAdvance(StepType))

	assert.False(t, w.CanAdvance(StepWorks))
	_, err := w.ToggleWork("Isla de cocina")
	require.NoError(t, err)
	assert.True(t, w.CanAdvance(StepWorks))

	assert.True(t, w.CanAdvance(StepMeasurements), "zero measurements are acceptable")
	assert.False(t, w.CanAdvance(Step(0)))
	assert.False(t, w.CanAdvance(Step(5)))
}

func TestCanAdvance_ContactBoundary(t *testing.T) {
	tests := []struct {
		name, phone string
		want        bool
	}{
		{"Al", "123 456 789", false},
		{"Ana", "123 456 78", false},
		{"Ana", "123 456 789", true},
		{"  Al  ", "123 456 789", false},
		{"Ana", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.phone, func(t *testing.T) {
			w, _ := newTestWizard(t, nil)
			require.NoError(t, w.SetContactField(ContactName, tt.name))
			require.NoError(t, w.SetContactField(ContactPhone, tt.phone))
			assert.Equal(t, tt.want, w.CanAdvance(StepContact))
		})
	}
}

func TestNavigation_Bounds(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	for range 3 {
		assert.False(t, w.Back())
	}
	assert.Equal(t, StepType, w.Step())

	assert.False(t, w.Next(), "gated without a type")
	assert.Equal(t, StepType, w.Step())

	fillToContact(t, w)
	require.NoError(t, w.SetContactField(ContactName, "Ana"))
	require.NoError(t, w.SetContactField(ContactPhone, "123 456 789"))

	for range 3 {
		assert.False(t, w.Next(), "no fifth step")
	}
	assert.Equal(t, StepContact, w.Step())

	assert.True(t, w.Back())
	assert.Equal(t, StepMeasurements, w.Step())
}

func TestNavigation_BackIsUnconditional(t *testing.T) {
	w, _ := newTestWizard(t, nil)
	fillToContact(t, w)

	require.NoError(t, w.SelectReformaType(catalog.Kitchen))
	assert.True(t, w.Back())
	assert.True(t, w.Back())
	assert.Equal(t, StepWorks, w.Step())
	assert.False(t, w.Next(), "works were cleared by the type switch")
}

func TestEveryMutationIsPersisted(t *testing.T) {
	w, p := newTestWizard(t, nil)

	require.NoError(t, w.SelectReformaType(catalog.Bathroom))
	require.True(t, w.Next())
	_, err := w.ToggleWork("Mampara")
	require.NoError(t, err)
	w.AdjustMeasurement("metros", Increment, 1, 1, 25)
	require.NoError(t, w.SetContactField(ContactName, "Ana"))
	require.True(t, w.Back())
	assert.False(t, w.Back(), "no-op is not saved")

	assert.Equal(t, []Step{1, 2, 2, 2, 2, 1}, p.saves)

	r, err := p.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r.State)
	assert.Equal(t, w.State(), *r.State)
	assert.Equal(t, StepType, r.Step)
}

func TestOpen_RestoresPersistedState(t *testing.T) {
	mem := store.NewMemoryStore()
	p := NewKVPersistence(mem)

	first := Open(context.Background(), p, nil)
	fillToContact(t, first)
	require.NoError(t, first.SetContactField(ContactName, "Ana"))

	second := Open(context.Background(), p, nil)
	assert.Equal(t, first.State(), second.State())
	assert.Equal(t, StepContact, second.Step())
}

func TestOpen_RestoresPartialContact(t *testing.T) {
	mem := store.NewMemoryStore()
	p := NewKVPersistence(mem)

	first := Open(context.Background(), p, nil)
	fillToContact(t, first)
	require.NoError(t, first.SetContactField(ContactName, "A"))
	require.NoError(t, first.SetContactField(ContactPhone, FormatPhone("6123")))

	second := Open(context.Background(), p, nil)
	assert.Equal(t, Contact{Name: "A", Phone: "612 3"}, second.State().Contact)
	assert.Equal(t, StepContact, second.Step())
	assert.False(t, second.CanAdvance(StepContact))
}

func TestOpen_MalformedStateKeepsStep(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, DataKey, []byte(`{"type": "bathroom", "works": [`)))
	require.NoError(t, mem.Set(ctx, StepKey, []byte("3")))

	w := Open(ctx, NewKVPersistence(mem), nil)
	assert.Equal(t, InitialState(), w.State())
	assert.Equal(t, StepMeasurements, w.Step())
}

type failingStore struct{ store.Store }

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestOpen_BackendFailureFallsBackToDefaults(t *testing.T) {
	w := Open(context.Background(), NewKVPersistence(failingStore{}), nil)
	assert.Equal(t, StepType, w.Step())

	// Save failures are logged, the mutation still applies.
	require.NoError(t, w.SelectReformaType(catalog.Full))
	assert.Equal(t, catalog.Full, w.State().ReformaType)
}

func TestOpen_NilPersistence(t *testing.T) {
	w := Open(context.Background(), nil, nil)
	require.NoError(t, w.SelectReformaType(catalog.Kitchen))
	assert.True(t, w.Next())
}

func TestReset(t *testing.T) {
	w, p := newTestWizard(t, nil)
	fillToContact(t, w)

	w.Reset()
	assert.Equal(t, InitialState(), w.State())
	assert.Equal(t, StepType, w.Step())

	r, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepType, r.Step)
}

func TestSubmit_NotReady(t *testing.T) {
	w, _ := newTestWizard(t, nil)

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, ErrNotReady)

	fillToContact(t, w)
	require.NoError(t, w.SetContactField(ContactName, "Al"))
	require.NoError(t, w.SetContactField(ContactPhone, "123 456 789"))
	_, err = w.Submit(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
}

func TestSubmit_Success(t *testing.T) {
	var got lead.Lead
	w, _ := newTestWizard(t, lead.IntakeFunc(func(_ context.Context, l lead.Lead) error {
		got = l
		return nil
	}))
	fillToContact(t, w)
	require.NoError(t, w.SetContactField(ContactName, "Ana"))
	require.NoError(t, w.SetContactField(ContactPhone, "612 345 678"))
	before := w.State()

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, got.ID, res.LeadID)

	assert.Equal(t, catalog.Bathroom, got.ReformaType)
	assert.Equal(t, []string{"Mampara"}, got.Works)
	assert.Equal(t, map[string]int{"metros": 1}, got.Measurements, "only the type's fields are sent")
	assert.Equal(t, "Ana", got.Contact.Name)

	assert.Equal(t, before, w.State(), "no reset after submit")
	assert.Equal(t, StepContact, w.Step())
}

func TestSubmit_FailureKeepsState(t *testing.T) {
	w, _ := newTestWizard(t, lead.IntakeFunc(func(context.Context, lead.Lead) error {
		return errors.New("crm down")
	}))
	fillToContact(t, w)
	require.NoError(t, w.SetContactField(ContactName, "Ana"))
	require.NoError(t, w.SetContactField(ContactPhone, "612 345 678"))
	before := w.State()

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "crm down", res.Message)
	assert.Equal(t, before, w.State())

	// The guard is released, so a retry reaches the intake again.
	res, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestSubmit_NotReentrant(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	w, _ := newTestWizard(t, lead.IntakeFunc(func(context.Context, lead.Lead) error {
		close(entered)
		<-release
		return nil
	}))
	fillToContact(t, w)
	require.NoError(t, w.SetContactField(ContactName, "Ana"))
	require.NoError(t, w.SetContactField(ContactPhone, "612 345 678"))

	done := make(chan SubmitResult)
	go func() {
		res, _ := w.Submit(context.Background())
		done <- res
	}()

	<-entered
	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	res := <-done
	assert.True(t, res.OK)
}
