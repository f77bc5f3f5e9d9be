// Package catalog holds the static data behind the quote calculator: the
// renovation types, the work items each type offers and the measurement
// fields collected for it.
package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// ReformaType identifies a renovation category. The zero value means no
// category has been chosen yet.
type ReformaType string

const (
	None     ReformaType = ""
	Bathroom ReformaType = "bathroom"
	Kitchen  ReformaType = "kitchen"
	Full     ReformaType = "full"
)

// TypeInfo is the display data for a renovation type.
type TypeInfo struct {
	ID    ReformaType
	Label string
	Icon  string
}

// MeasurementField is a bounded integer quantity collected in step 3.
type MeasurementField struct {
	ID    string
	Label string
	Min   int
	Max   int
	Step  int
	Unit  string
}

// Measurement field ids.
const (
	FieldMetros   = "metros"
	FieldBanos    = "baños"
	FieldVentanas = "ventanas"
	FieldPuertas  = "puertas"
)

var types = []TypeInfo{
	{ID: Bathroom, Label: "Reforma Baño", Icon: "🚿"},
	{ID: Kitchen, Label: "Reforma Cocina", Icon: "🍽️"},
	{ID: Full, Label: "Reforma Integral", Icon: "🏠"},
}

var workOptions = map[ReformaType][]string{
	Bathroom: {
		"Cambiar suelo",
		"Alicatar paredes",
		"Sanitarios y muebles",
		"Electricidad y fontanería",
		"Cambiar ventana",
		"Puerta del baño",
		"Bañera o plato ducha",
		"Mampara",
	},
	Kitchen: {
		"Cambiar suelo",
		"Alicatar paredes",
		"Muebles y encimera",
		"Electrodomésticos",
		"Isla de cocina",
		"Abrir al comedor",
		"Electricidad y fontanería",
		"Cambiar puerta",
		"Cambiar aluminio",
	},
	Full: {
		"Reformar la cocina",
		"Pintar piso",
		"Abrir cocina al comedor",
		"Proyecto técnico",
		"Aire acondicionado",
		"Fontanería",
		"Cambiar suelo",
		"Quitar gotelé",
		"Tirar tabiques",
		"Calefacción",
		"Instalación eléctrica",
	},
}

var (
	bathroomFields = []MeasurementField{
		{ID: FieldMetros, Label: "¿Qué superficie total tiene su baño?", Min: 1, Max: 25, Step: 1, Unit: "m²"},
	}
	kitchenFields = []MeasurementField{
		{ID: FieldMetros, Label: "¿Qué superficie total tiene su cocina?", Min: 1, Max: 40, Step: 1, Unit: "m²"},
	}
	fullFields = []MeasurementField{
		{ID: FieldMetros, Label: "¿Qué superficie total tiene su vivienda?", Min: 0, Max: 500, Step: 5, Unit: "m²"},
		{ID: FieldBanos, Label: "Baños a reformar", Min: 0, Max: 10, Step: 1},
		{ID: FieldVentanas, Label: "Ventanas y puertas aluminio", Min: 0, Max: 20, Step: 1},
		{ID: FieldPuertas, Label: "Puertas de madera", Min: 0, Max: 20, Step: 1},
	}
)

// Types returns the renovation types in display order.
func Types() []TypeInfo {
	return slices.Clone(types)
}

// Lookup returns the display data for t.
func Lookup(t ReformaType) (TypeInfo, bool) {
	for _, info := range types {
		if info.ID == t {
			return info, true
		}
	}
	return TypeInfo{}, false
}

// Valid reports whether t is one of the known renovation types.
func (t ReformaType) Valid() bool {
	_, ok := Lookup(t)
	return ok
}

// Label returns the display label, or the raw id for unknown types.
func (t ReformaType) Label() string {
	if info, ok := Lookup(t); ok {
		return info.Label
	}
	return string(t)
}

// ParseType accepts a type id or its label, case-insensitively.
func ParseType(s string) (ReformaType, error) {
	s = strings.TrimSpace(s)
	for _, info := range types {
		if strings.EqualFold(s, string(info.ID)) || strings.EqualFold(s, info.Label) {
			return info.ID, nil
		}
	}
	return None, fmt.Errorf("unknown reforma type %q", s)
}

// WorkOptions returns the selectable work items for t, nil for None.
func WorkOptions(t ReformaType) []string {
	return slices.Clone(workOptions[t])
}

// ValidWork reports whether label is a work item offered for t.
func ValidWork(t ReformaType, label string) bool {
	return slices.Contains(workOptions[t], label)
}

// MeasurementFields returns the fields collected for t. Anything other than
// bathroom or kitchen, including None, gets the full-renovation set.
func MeasurementFields(t ReformaType) []MeasurementField {
	switch t {
	case Bathroom:
		return slices.Clone(bathroomFields)
	case Kitchen:
		return slices.Clone(kitchenFields)
	default:
		return slices.Clone(fullFields)
	}
}

// Field looks up one measurement field of t's field set.
func Field(t ReformaType, id string) (MeasurementField, bool) {
	for _, f := range MeasurementFields(t) {
		if f.ID == id {
			return f, true
		}
	}
	return MeasurementField{}, false
}

// FieldIDs lists every measurement id any type can use, in display order.
func FieldIDs() []string {
	ids := make([]string, 0, len(fullFields))
	for _, f := range fullFields {
		ids = append(ids, f.ID)
	}
	return ids
}

// Clamp saturates v into [f.Min, f.Max].
func (f MeasurementField) Clamp(v int) int {
	return min(max(v, f.Min), f.Max)
}
