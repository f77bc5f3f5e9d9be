// Package wizard implements the four-step quote calculator: the state it
// collects, the commands that mutate it, the gating rules between steps and
// the write-through persistence of every change.
package wizard

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/lead"
)

// Step is one of the four wizard stages.
type Step int

const (
	StepType Step = iota + 1
	StepWorks
	StepMeasurements
	StepContact
)

const (
	FirstStep = StepType
	LastStep  = StepContact
)

var stepNames = map[Step]string{
	StepType:         "Tipo de reforma",
	StepWorks:        "Trabajos",
	StepMeasurements: "Espacio a transformar",
	StepContact:      "Contacto",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Valid reports whether s is within [FirstStep, LastStep].
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Contact is the callback details entered in the last step.
type Contact = lead.Contact

// State is everything the wizard collects. It is the value persisted under
// the data slot.
type State struct {
	ReformaType   catalog.ReformaType `json:"type" validate:"omitempty,oneof=bathroom kitchen full"`
	SelectedWorks []string            `json:"works" validate:"dive,required"`
	Measurements  map[string]int      `json:"measurements"`
	Contact       Contact             `json:"contact" validate:"-"`
}

// InitialState is the state of a wizard nobody has touched: no type, no
// works, every measurement at 0 and an empty contact.
func InitialState() State {
	m := make(map[string]int, len(catalog.FieldIDs()))
	for _, id := range catalog.FieldIDs() {
		m[id] = 0
	}
	return State{
		SelectedWorks: []string{},
		Measurements:  m,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.SelectedWorks = slices.Clone(s.SelectedWorks)
	if c.SelectedWorks == nil {
		c.SelectedWorks = []string{}
	}
	c.Measurements = maps.Clone(s.Measurements)
	if c.Measurements == nil {
		c.Measurements = map[string]int{}
	}
	return c
}

// Measurement returns the value of a field, 0 when it was never set.
func (s State) Measurement(id string) int {
	return s.Measurements[id]
}

// HasWork reports whether label is currently selected.
func (s State) HasWork(label string) bool {
	return slices.Contains(s.SelectedWorks, label)
}

// Lead builds the intake payload from s.
func (s State) Lead() lead.Lead {
	fields := catalog.MeasurementFields(s.ReformaType)
	m := make(map[string]int, len(fields))
	for _, f := range fields {
		m[f.ID] = s.Measurement(f.ID)
	}
	return lead.New(s.ReformaType, s.SelectedWorks, m, s.Contact)
}

var stateValidator = validator.New()

// clampMeasurements saturates every set measurement into the bounds the
// current type uses for it. Untouched fields (0) are left alone.
func (s *State) clampMeasurements() {
	for _, id := range catalog.FieldIDs() {
		v, ok := s.Measurements[id]
		if !ok || v == 0 {
			continue
		}
		f, ok := catalog.Field(s.ReformaType, id)
		if !ok {
			f, _ = catalog.Field(catalog.Full, id)
		}
		s.Measurements[id] = f.Clamp(v)
	}
}

// DecodeState parses a persisted state. It fails unless the JSON is a
// well-formed State: known or null type, and every selected work offered
// for that type. Missing measurement fields are filled with 0 and the rest
// are clamped to the type's bounds. The contact is not checked here, a
// half-typed name or phone is valid progress.
func DecodeState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decoding state: %w", err)
	}
	if err := stateValidator.Struct(s); err != nil {
		return State{}, fmt.Errorf("validating state: %w", err)
	}
	for _, w := range s.SelectedWorks {
		if !catalog.ValidWork(s.ReformaType, w) {
			return State{}, fmt.Errorf("validating state: work %q not offered for type %q", w, s.ReformaType)
		}
	}
	if len(slices.Compact(slices.Sorted(slices.Values(s.SelectedWorks)))) != len(s.SelectedWorks) {
		return State{}, fmt.Errorf("validating state: duplicate work")
	}

	s = s.Clone()
	for _, id := range catalog.FieldIDs() {
		if _, ok := s.Measurements[id]; !ok {
			s.Measurements[id] = 0
		}
	}
	s.clampMeasurements()
	return s, nil
}

// EncodeState serializes s for the data slot.
func EncodeState(s State) ([]byte, error) {
	return json.Marshal(s.Clone())
}
