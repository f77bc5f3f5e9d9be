package wizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/lead"
	"github.com/vield/calculadora/internal/logger"
)

var (
	ErrUnknownType         = errors.New("unknown reforma type")
	ErrNoReformaType       = errors.New("no reforma type selected")
	ErrUnknownWork         = errors.New("work not offered for the selected reforma type")
	ErrUnknownField        = errors.New("measurement field not used by the selected reforma type")
	ErrUnknownContactField = errors.New("unknown contact field")
	ErrNotReady            = errors.New("wizard is not ready to submit")
	ErrSubmitInFlight      = errors.New("a submission is already in progress")
)

// Direction of a measurement adjustment.
type Direction int

const (
	Decrement Direction = -1
	Increment Direction = 1
)

// ContactField names an editable contact field.
type ContactField string

const (
	ContactName  ContactField = "name"
	ContactPhone ContactField = "phone"
)

// SubmitResult is the outcome of handing the lead to the intake. A failed
// result leaves the wizard state untouched so the user can retry.
type SubmitResult struct {
	OK      bool
	LeadID  string
	Message string
}

// Wizard owns the calculator state. Every command applies its mutation and
// then writes the whole state through to the Persistence before returning.
//
// A Wizard is safe for concurrent use, although the UI drives it from a
// single goroutine; the lock exists so Submit can run on a background
// command while the view keeps reading state.
type Wizard struct {
	mu         sync.Mutex
	ctx        context.Context
	state      State
	step       Step
	persist    Persistence
	intake     lead.Intake
	submitting bool
}

// Open loads whatever p restored, merges it over the initial state and
// returns a ready wizard. Load problems never prevent opening: they are
// logged and the affected slot falls back to its default.
//
// ctx is used for persistence writes made by later commands.
func Open(ctx context.Context, p Persistence, intake lead.Intake) *Wizard {
	if intake == nil {
		intake = lead.LogIntake{}
	}
	w := &Wizard{
		ctx:     ctx,
		state:   InitialState(),
		step:    FirstStep,
		persist: p,
		intake:  intake,
	}

	if p == nil {
		return w
	}

	r, err := p.Load(ctx)
	if err != nil {
		logger.Warn("Loading calculator state: %v", err)
	}
	if r.State != nil {
		w.state = r.State.Clone()
	}
	if r.Step.Valid() {
		w.step = r.Step
	}
	logger.Debug("Calculator opened at step %d (restored state: %t)", w.step, r.State != nil)
	return w
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SelectReformaType sets the renovation type. Choosing a different type
// clears the work selection and clamps the measurements to the new type's
// bounds; choosing the active type again keeps both.
func (w *Wizard) SelectReformaType(t catalog.ReformaType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.ReformaType != t {
		w.state.SelectedWorks = []string{}
		w.state.ReformaType = t
		w.state.clampMeasurements()
	}
	logger.Debug("Selected reforma type %s", t)
	w.save()
	return nil
}

// ToggleWork adds label to the selection, or removes it if already
// selected. It returns whether label is selected afterwards. A type must be
// selected first and label must be one of its work options.
func (w *Wizard) ToggleWork(label string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.ReformaType == catalog.None {
		return false, ErrNoReformaType
	}
	if !catalog.ValidWork(w.state.ReformaType, label) {
		return false, fmt.Errorf("%w: %q", ErrUnknownWork, label)
	}

	selected := true
	if i := slices.Index(w.state.SelectedWorks, label); i >= 0 {
		w.state.SelectedWorks = slices.Delete(w.state.SelectedWorks, i, i+1)
		selected = false
	} else {
		w.state.SelectedWorks = append(w.state.SelectedWorks, label)
	}
	logger.Debug("Toggled work %q selected=%t", label, selected)
	w.save()
	return selected, nil
}

// AdjustMeasurement moves fieldID by one step in dir and saturates the
// result into [lo, hi]. It returns the stored value.
func (w *Wizard) AdjustMeasurement(fieldID string, dir Direction, step, lo, hi int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.adjust(fieldID, dir, step, lo, hi)
}

func (w *Wizard) adjust(fieldID string, dir Direction, step, lo, hi int) int {
	bounds := catalog.MeasurementField{ID: fieldID, Min: lo, Max: hi}
	next := bounds.Clamp(w.state.Measurement(fieldID) + int(dir)*step)

	if w.state.Measurements == nil {
		w.state.Measurements = map[string]int{}
	}
	w.state.Measurements[fieldID] = next
	logger.Debug("Measurement %s = %d", fieldID, next)
	w.save()
	return next
}

// Increment adjusts fieldID up one catalog step for the current type.
func (w *Wizard) Increment(fieldID string) (int, error) {
	return w.adjustField(fieldID, Increment)
}

// Decrement adjusts fieldID down one catalog step for the current type.
func (w *Wizard) Decrement(fieldID string) (int, error) {
	return w.adjustField(fieldID, Decrement)
}

func (w *Wizard) adjustField(fieldID string, dir Direction) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, ok := catalog.Field(w.state.ReformaType, fieldID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
	}
	return w.adjust(f.ID, dir, f.Step, f.Min, f.Max), nil
}

// SetContactField stores value as-is. Phones are expected to be formatted
// by the caller (see FormatPhone).
func (w *Wizard) SetContactField(field ContactField, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch field {
	case ContactName:
		w.state.Contact.Name = value
	case ContactPhone:
		w.state.Contact.Phone = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownContactField, field)
	}
	w.save()
	return nil
}

// CanAdvance reports whether the state satisfies step's gate.
func (w *Wizard) CanAdvance(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return canAdvance(w.state, step)
}

func canAdvance(s State, step Step) bool {
	switch step {
	case StepType:
		return s.ReformaType != catalog.None
	case StepWorks:
		return len(s.SelectedWorks) > 0
	case StepMeasurements:
		return true
	case StepContact:
		return lead.ValidName(s.Contact.Name) && lead.ValidPhone(s.Contact.Phone)
	default:
		return false
	}
}

// Next moves forward one step if the current step's gate passes. It returns
// false, changing nothing, when gated or already on the last step.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step >= LastStep || !canAdvance(w.state, w.step) {
		return false
	}
	w.step++
	w.save()
	return true
}

// Back moves back one step. It returns false on the first step.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step <= FirstStep {
		return false
	}
	w.step--
	w.save()
	return true
}

// Reset returns to the initial state on the first step and persists that.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = InitialState()
	w.step = FirstStep
	w.save()
}

// Submit hands the current state to the intake. It is only allowed on the
// last step with a valid contact, and not while another Submit is running.
// Intake failures are reported in the result, never as an error, and leave
// the state as it was. Nothing is reset after a successful submit.
func (w *Wizard) Submit(ctx context.Context) (SubmitResult, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}
	if w.step != LastStep || !canAdvance(w.state, LastStep) {
		w.mu.Unlock()
		return SubmitResult{}, ErrNotReady
	}
	w.submitting = true
	l := w.state.Lead()
	w.mu.Unlock()

	res := w.deliver(ctx, l)

	w.mu.Lock()
	w.submitting = false
	w.mu.Unlock()
	return res, nil
}

func (w *Wizard) deliver(ctx context.Context, l lead.Lead) SubmitResult {
	if err := l.Validate(); err != nil {
		logger.Error("Lead %s failed validation: %v", l.ID, err)
		return SubmitResult{LeadID: l.ID, Message: fmt.Sprintf("datos no válidos: %v", err)}
	}
	if err := w.intake.Submit(ctx, l); err != nil {
		logger.Error("Lead %s rejected by intake: %v", l.ID, err)
		return SubmitResult{LeadID: l.ID, Message: err.Error()}
	}
	logger.Info("Lead %s submitted", l.ID)
	return SubmitResult{OK: true, LeadID: l.ID, Message: "Solicitud enviada"}
}

// save writes through to the persistence. Callers hold w.mu.
func (w *Wizard) save() {
	if w.persist == nil {
		return
	}
	if err := w.persist.Save(w.ctx, w.state, w.step); err != nil {
		logger.Warn("Saving calculator state: %v", err)
	}
}
