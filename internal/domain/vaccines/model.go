package vaccines

import (
	"time"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/validation"
)

var (
	ErrNotFound  = apperr.NotFound("vaccine not found")
	ErrNameTaken = apperr.Integrity("name", "a vaccine with this name already exists")
	// ErrInUse: hay vacunaciones que referencian la vacuna.
	ErrInUse = apperr.Conflict("vaccine is referenced by vaccination records")
)

// Vaccine es un tipo de vacuna del catálogo compartido.
type Vaccine struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"notblank,max=200"`
	Manufacturer  string `json:"manufacturer" validate:"max=200"`
	Description   string `json:"description"`
	SpeciesTarget string `json:"species_target" validate:"max=50"`

	// DurationMonths: validez en meses, base del cálculo de próxima dosis.
	DurationMonths int  `json:"duration_months" validate:"gte=1"`
	Mandatory      bool `json:"is_mandatory"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// El catálogo no tiene dueño.
func (v Vaccine) EntityKind() access.Kind { return access.KindVaccine }
func (v Vaccine) ResolveOwner() access.Resolution { return access.Shared() }

var validate = validation.New()

func Validate(v Vaccine) error {
	return validate.Validate(v)
}
