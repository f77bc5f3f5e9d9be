package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vield/calculadora/internal/logger"
	"github.com/vield/calculadora/internal/store"
)

// Slot keys. The two slots are written together but read independently.
const (
	DataKey = "vield_calculator_data"
	StepKey = "vield_calculator_step"
)

// Restored is what a Persistence found. State is nil and Step is 0 for a
// slot that was absent or could not be parsed.
type Restored struct {
	State *State
	Step  Step
}

// Empty reports whether nothing usable was restored.
func (r Restored) Empty() bool {
	return r.State == nil && r.Step == 0
}

// Persistence is where a Wizard keeps its state between runs.
type Persistence interface {
	Load(ctx context.Context) (Restored, error)
	Save(ctx context.Context, s State, step Step) error
	Clear(ctx context.Context) error
}

// KVPersistence stores the state as JSON and the step as decimal text in
// two slots of a store.Store.
type KVPersistence struct {
	store store.Store
}

// NewKVPersistence wraps s.
func NewKVPersistence(s store.Store) *KVPersistence {
	return &KVPersistence{store: s}
}

// Load reads both slots. A malformed slot is logged and reported as absent;
// only backend failures are returned as errors, and even then whatever the
// other slot held is still returned.
func (p *KVPersistence) Load(ctx context.Context) (Restored, error) {
	var r Restored
	var errs []error

	data, err := p.store.Get(ctx, DataKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		errs = append(errs, fmt.Errorf("loading %s: %w", DataKey, err))
	default:
		s, err := DecodeState(data)
		if err != nil {
			logger.Warn("Discarding persisted calculator state: %v", err)
		} else {
			r.State = &s
		}
	}

	raw, err := p.store.Get(ctx, StepKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		errs = append(errs, fmt.Errorf("loading %s: %w", StepKey, err))
	default:
		step, err := parseStep(raw)
		if err != nil {
			logger.Warn("Discarding persisted calculator step: %v", err)
		} else {
			r.Step = step
		}
	}

	return r, errors.Join(errs...)
}

func parseStep(raw []byte) (Step, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parsing step %q: %w", raw, err)
	}
	step := Step(n)
	if !step.Valid() {
		return 0, fmt.Errorf("step %d out of range", n)
	}
	return step, nil
}

// Save writes both slots. Both writes are attempted even if the first fails.
func (p *KVPersistence) Save(ctx context.Context, s State, step Step) error {
	data, err := EncodeState(s)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return errors.Join(
		p.store.Set(ctx, DataKey, data),
		p.store.Set(ctx, StepKey, []byte(strconv.Itoa(int(step)))),
	)
}

// Clear deletes both slots.
func (p *KVPersistence) Clear(ctx context.Context) error {
	return errors.Join(
		p.store.Delete(ctx, DataKey),
		p.store.Delete(ctx, StepKey),
	)
}
