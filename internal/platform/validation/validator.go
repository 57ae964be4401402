// Package validation envuelve go-playground/validator y traduce los errores a un mapa
// campo -> motivo (nombres de campo según el tag json).
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"pet-vaccination-schedule/internal/platform/apperr"
)

// phonePattern: formato internacional laxo, hasta 15 dígitos.
var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// Validator es seguro para uso concurrente.
type Validator struct {
	v *validator.Validate
}

// New crea el validator con las reglas propias del dominio.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// Fields valida s y devuelve los errores por campo (vacío si es válido).
// Errores que no son de validación (p.ej. s no es struct) se reportan bajo "_".
func (v *Validator) Fields(s any) map[string]string {
	out := map[string]string{}

	err := v.v.Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}

	for _, e := range verrs {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = friendlyMessage(e)
	}
	return out
}

// Validate es Fields envuelto en un apperr de validación (nil si es válido).
func (v *Validator) Validate(s any) error {
	if fields := v.Fields(s); len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be in the format '+999999999' with up to 15 digits"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must be less than or equal to " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be greater than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "uuid", "uuid4":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}
