// Package lead defines the payload handed to the lead-intake collaborator
// when a quote request is submitted, and the collaborators themselves.
package lead

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/vield/calculadora/internal/catalog"
)

// Contact is who to call back.
type Contact struct {
	Name  string `json:"name" validate:"contact_name"`
	Phone string `json:"phone" validate:"contact_phone"`
}

// Lead is a completed quote request.
type Lead struct {
	ID           string              `json:"id" validate:"required,uuid4"`
	CreatedAt    time.Time           `json:"created_at" validate:"required"`
	ReformaType  catalog.ReformaType `json:"reforma_type" validate:"required,oneof=bathroom kitchen full"`
	Works        []string            `json:"selected_works" validate:"min=1,dive,required"`
	Measurements map[string]int      `json:"measurements" validate:"dive,gte=0"`
	Contact      Contact             `json:"contact"`
}

// New builds a lead with a fresh id. Slices and maps are copied.
func New(t catalog.ReformaType, works []string, measurements map[string]int, contact Contact) Lead {
	return Lead{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		ReformaType:  t,
		Works:        slices.Clone(works),
		Measurements: maps.Clone(measurements),
		Contact:      contact,
	}
}

// MinNameLength is the minimum trimmed length of a contact name.
const MinNameLength = 3

// PhoneLength is the number of non-space characters a phone must have.
const PhoneLength = 9

// ValidName reports whether name has at least MinNameLength characters once
// surrounding whitespace is trimmed.
func ValidName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= MinNameLength
}

// ValidPhone reports whether phone has exactly PhoneLength characters once
// all whitespace is removed.
func ValidPhone(phone string) bool {
	return utf8.RuneCountInString(StripSpaces(phone)) == PhoneLength
}

// StripSpaces removes every whitespace rune from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	checks := map[string]func(string) bool{
		"contact_name":  ValidName,
		"contact_phone": ValidPhone,
	}
	for tag, check := range checks {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fl.Field().Kind() == reflect.String && check(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}
	return v
}

// Validate checks the lead's shape and that every work belongs to its type.
func (l *Lead) Validate() error {
	if err := validate.Struct(l); err != nil {
		return err
	}
	for _, w := range l.Works {
		if !catalog.ValidWork(l.ReformaType, w) {
			return fmt.Errorf("work %q is not offered for %s", w, l.ReformaType)
		}
	}
	return nil
}

// SubjectToken turns the lead's type label into a NATS subject token, e.g.
// "Reforma Baño" becomes "reforma-bano".
func (l *Lead) SubjectToken() string {
	return slug.Make(l.ReformaType.Label())
}
