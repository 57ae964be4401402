package pets

import (
	"time"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/validation"
)

var ErrNotFound = apperr.NotFound("pet not found")

// Species define las especies soportadas.
// @Enum dog, cat, bird, rabbit, hamster, reptile, other
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesRabbit  Species = "rabbit"
	SpeciesHamster Species = "hamster"
	SpeciesReptile Species = "reptile"
	SpeciesOther   Species = "other"
)

// Pet representa una mascota. Owner viaja cargado junto con la mascota
// (mismo read) para poder resolver permisos sin otra consulta.
type Pet struct {
	ID      string        `json:"id"`
	OwnerID string        `json:"owner_id" validate:"notblank"`
	Owner   *owners.Owner `json:"-" validate:"-"`

	Name    string  `json:"name" validate:"notblank,max=100"`
	Species Species `json:"species" validate:"required,oneof=dog cat bird rabbit hamster reptile other"`
	Breed   string  `json:"breed" validate:"max=100"`
	Color   string  `json:"color" validate:"max=50"`

	BirthDate time.Time `json:"birth_date" validate:"required"`
	Weight    *float64  `json:"weight" validate:"omitempty,gt=0"` // kg

	Notes string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Pet) EntityKind() access.Kind { return access.KindPet }

// ResolveOwner: sin Owner cargado, o con uno que no corresponde, la cadena no resuelve.
func (p Pet) ResolveOwner() access.Resolution {
	if p.Owner == nil || p.Owner.ID != p.OwnerID {
		return access.Unresolvable()
	}
	return p.Owner.ResolveOwner()
}

// Age es la edad derivada de la mascota a una fecha dada.
type Age struct {
	Years  int `json:"age_years"`
	Months int `json:"age_months"`
}

func AgeOf(p Pet, today time.Time) Age {
	return Age{
		Years:  schedule.AgeYears(p.BirthDate, today),
		Months: schedule.AgeMonths(p.BirthDate, today),
	}
}

var validate = validation.New()

// Validate aplica reglas estructurales y de fechas. today llega del reloj del service.
func Validate(p Pet, today time.Time) error {
	fields := validate.Fields(p)

	if _, bad := fields["birth_date"]; !bad && !p.BirthDate.IsZero() {
		if schedule.Day(p.BirthDate).After(schedule.Day(today)) {
			fields["birth_date"] = "cannot be in the future"
		}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
