package vaccinations

import (
	"time"

	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/validation"
)

var validate = validation.New()

// Validate revisa un candidato antes de persistir.
//
//   - reglas estructurales (tags)
//   - administered_date no puede ser futura ni anterior al nacimiento de la mascota
//   - next_dose_date, si viene, no puede ser anterior a administered_date
//   - ningún otro evento (ID distinto) puede tener la misma Triple
//
// existing son las dosis ya registradas para (pet, vaccine); el caller las consulta.
// Los errores de campo ganan sobre el duplicado.
func Validate(e Event, pet pets.Pet, today time.Time, existing []Dose) error {
	fields := validate.Fields(e)

	if _, bad := fields["administered_date"]; !bad && !e.AdministeredDate.IsZero() {
		administered := schedule.Day(e.AdministeredDate)
		switch {
		case administered.After(schedule.Day(today)):
			fields["administered_date"] = "cannot be in the future"
		case !pet.BirthDate.IsZero() && administered.Before(schedule.Day(pet.BirthDate)):
			fields["administered_date"] = "cannot be before the pet's birth date"
		}
	}

	if _, bad := fields["administered_date"]; !bad && e.NextDoseDate != nil && !e.AdministeredDate.IsZero() {
		if schedule.Day(*e.NextDoseDate).Before(schedule.Day(e.AdministeredDate)) {
			fields["next_dose_date"] = "cannot be before administered_date"
		}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}

	t := e.Triple()
	for _, d := range existing {
		if d.EventID == e.ID {
			continue
		}
		if d.Triple.Equal(t) {
			return ErrDuplicateDose
		}
	}
	return nil
}
