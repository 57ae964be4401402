package vaccinations

import (
	"time"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/domain/vaccines"
	"pet-vaccination-schedule/internal/platform/apperr"
)

var (
	ErrNotFound = apperr.NotFound("vaccination not found")
	// ErrDuplicateDose: misma vacuna, misma mascota, mismo día.
	ErrDuplicateDose = apperr.Integrity("administered_date",
		"this vaccine was already recorded for this pet on this date")
)

// Event es una aplicación de una vacuna a una mascota.
// Pet (con Owner) y Vaccine viajan cargados desde el repo en el mismo read.
type Event struct {
	ID        string            `json:"id"`
	PetID     string            `json:"pet_id" validate:"notblank"`
	Pet       *pets.Pet         `json:"-" validate:"-"`
	VaccineID string            `json:"vaccine_id" validate:"notblank"`
	Vaccine   *vaccines.Vaccine `json:"-" validate:"-"`

	AdministeredDate time.Time `json:"administered_date" validate:"required"`
	VeterinarianName string    `json:"veterinarian_name" validate:"notblank,max=200"`
	ClinicName       string    `json:"clinic_name" validate:"max=200"`
	BatchNumber      string    `json:"batch_number" validate:"max=100"`

	// NextDoseDate se calcula una única vez al crear si no viene explícita.
	NextDoseDate *time.Time `json:"next_dose_date"`

	Notes string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e Event) EntityKind() access.Kind { return access.KindVaccination }

// ResolveOwner recorre Event -> Pet -> Owner.
func (e Event) ResolveOwner() access.Resolution {
	if e.Pet == nil || e.Pet.ID != e.PetID {
		return access.Unresolvable()
	}
	return e.Pet.ResolveOwner()
}

// Triple identifica una dosis: (mascota, vacuna, día). Es única.
type Triple struct {
	PetID            string
	VaccineID        string
	AdministeredDate time.Time
}

func (e Event) Triple() Triple {
	return Triple{
		PetID:            e.PetID,
		VaccineID:        e.VaccineID,
		AdministeredDate: schedule.Day(e.AdministeredDate),
	}
}

func (t Triple) Equal(o Triple) bool {
	return t.PetID == o.PetID && t.VaccineID == o.VaccineID &&
		schedule.Day(t.AdministeredDate).Equal(schedule.Day(o.AdministeredDate))
}

// Dose es la proyección mínima de un evento existente para chequear duplicados.
type Dose struct {
	EventID string
	Triple
}

// Derived es el estado calculado de un evento respecto de hoy.
type Derived struct {
	Status       schedule.Status
	DueSoon      bool
	Overdue      bool
	DaysUntilDue *int
}

// Derive no muta e; con el mismo today da siempre el mismo resultado.
func Derive(e Event, today time.Time) Derived {
	status := schedule.Classify(e.NextDoseDate, today)
	return Derived{
		Status:       status,
		DueSoon:      status == schedule.StatusDueSoon,
		Overdue:      status == schedule.StatusOverdue,
		DaysUntilDue: schedule.DaysUntilDue(e.NextDoseDate, today),
	}
}
