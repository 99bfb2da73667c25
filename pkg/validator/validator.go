// Package validator envuelve go-playground/validator para validación por tags.
package validator

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Validator instancia inyectable del validador.
type Validator struct {
	v *validator.Validate
}

// New construye un validador que reporta los campos por su tag `field` (si existe).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	return &Validator{v: v}
}

// Struct valida un struct según sus tags `validate`.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var valida una variable suelta contra un tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// FieldError resume el primer error de validación.
type FieldError struct {
	Field string
	Tag   string
}

// FirstError extrae el primer campo inválido de un error de Struct. ok=false si err no es de validación.
func FirstError(err error) (FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return FieldError{}, false
	}
	fe := verrs[0]
	return FieldError{Field: fe.Field(), Tag: fe.Tag()}, true
}
