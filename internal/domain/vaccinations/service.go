package vaccinations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/domain/vaccines"
	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/metrics"
)

// RecentWindowDays: "recientes" son las aplicadas en los últimos N días.
const RecentWindowDays = 30

// PetDirectory y VaccineLookup los cumplen pets.Service y vaccines.Service.
type PetDirectory interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error)
	Owner(ctx context.Context, ownerID string) (owners.Owner, error)
}

type VaccineLookup interface {
	GetByID(ctx context.Context, id string) (vaccines.Vaccine, error)
}

type Service struct {
	repo     Repository
	pets     PetDirectory
	vaccines VaccineLookup
	now      func() time.Time
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo Repository, petDir PetDirectory, vaccineLookup VaccineLookup, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		pets:     petDir,
		vaccines: vaccineLookup,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Today() time.Time {
	return schedule.Today(s.now())
}

type CreateInput struct {
	VaccineID        string
	AdministeredDate time.Time
	VeterinarianName string
	ClinicName       string
	BatchNumber      string
	NextDoseDate     *time.Time // nil => se calcula con la duración de la vacuna
	Notes            string
}

// Create registra una aplicación para pet (ya cargada y autorizada por el caller).
// La próxima dosis se calcula acá, una sola vez, si no viene explícita.
func (s *Service) Create(ctx context.Context, pet pets.Pet, in CreateInput) (Event, error) {
	now := s.now()

	vaccine, err := s.loadVaccine(ctx, in.VaccineID)
	if err != nil {
		return Event{}, err
	}

	e := Event{
		ID:               uuid.NewString(),
		PetID:            pet.ID,
		Pet:              &pet,
		VaccineID:        vaccine.ID,
		Vaccine:          &vaccine,
		AdministeredDate: schedule.Day(in.AdministeredDate),
		VeterinarianName: strings.TrimSpace(in.VeterinarianName),
		ClinicName:       strings.TrimSpace(in.ClinicName),
		BatchNumber:      strings.TrimSpace(in.BatchNumber),
		NextDoseDate:     dayPtr(in.NextDoseDate),
		Notes:            strings.TrimSpace(in.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if e.NextDoseDate == nil && !e.AdministeredDate.IsZero() {
		e.NextDoseDate = schedule.NextDoseDate(e.AdministeredDate, vaccine.DurationMonths)
	}

	if err := s.validate(ctx, e, now); err != nil {
		return Event{}, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, s.mapStorageErr(err)
	}
	return e, nil
}

// NextDosePatch distingue "next_dose_date": null (limpiar) de "no enviado".
type NextDosePatch struct {
	Present bool
	Value   *time.Time
}

// UpdateInput: nil = no tocar. La mascota de un evento no cambia.
type UpdateInput struct {
	VaccineID        *string
	AdministeredDate *time.Time
	VeterinarianName *string
	ClinicName       *string
	BatchNumber      *string
	NextDoseDate     NextDosePatch
	Notes            *string
}

// Update revalida todas las reglas. Nunca recalcula la próxima dosis por su cuenta:
// sólo cambia si el caller la envía.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}

	if in.VaccineID != nil && strings.TrimSpace(*in.VaccineID) != e.VaccineID {
		vaccine, err := s.loadVaccine(ctx, *in.VaccineID)
		if err != nil {
			return Event{}, err
		}
		e.VaccineID = vaccine.ID
		e.Vaccine = &vaccine
	}
	if in.AdministeredDate != nil {
		e.AdministeredDate = schedule.Day(*in.AdministeredDate)
	}
	if in.VeterinarianName != nil {
		e.VeterinarianName = strings.TrimSpace(*in.VeterinarianName)
	}
	if in.ClinicName != nil {
		e.ClinicName = strings.TrimSpace(*in.ClinicName)
	}
	if in.BatchNumber != nil {
		e.BatchNumber = strings.TrimSpace(*in.BatchNumber)
	}
	if in.NextDoseDate.Present {
		e.NextDoseDate = dayPtr(in.NextDoseDate.Value)
	}
	if in.Notes != nil {
		e.Notes = strings.TrimSpace(*in.Notes)
	}

	now := s.now()
	e.UpdatedAt = now

	if err := s.validate(ctx, e, now); err != nil {
		return Event{}, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return Event{}, s.mapStorageErr(err)
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Event, error) {
	f.Query = strings.TrimSpace(f.Query)
	return s.repo.List(ctx, f)
}

// Pet carga la mascota (con Owner) para autorizar antes de crear.
func (s *Service) Pet(ctx context.Context, petID string) (pets.Pet, error) {
	return s.pets.GetByID(ctx, petID)
}

func (s *Service) Owner(ctx context.Context, ownerID string) (owners.Owner, error) {
	return s.pets.Owner(ctx, ownerID)
}

func (s *Service) Vaccine(ctx context.Context, vaccineID string) (vaccines.Vaccine, error) {
	return s.vaccines.GetByID(ctx, strings.TrimSpace(vaccineID))
}

// DueSoon: próxima dosis en [hoy, hoy+30].
func (s *Service) DueSoon(ctx context.Context, scope ListFilter) ([]Event, error) {
	today := s.Today()
	until := today.AddDate(0, 0, schedule.DueSoonWindowDays)
	scope.NextDoseFrom, scope.NextDoseTo = &today, &until
	scope.Order = OrderNextDoseAsc
	return s.List(ctx, scope)
}

// Overdue: próxima dosis estrictamente antes de hoy.
func (s *Service) Overdue(ctx context.Context, scope ListFilter) ([]Event, error) {
	yesterday := s.Today().AddDate(0, 0, -1)
	scope.NextDoseFrom, scope.NextDoseTo = nil, &yesterday
	scope.Order = OrderNextDoseAsc
	return s.List(ctx, scope)
}

// Recent: aplicadas en los últimos 30 días.
func (s *Service) Recent(ctx context.Context, scope ListFilter) ([]Event, error) {
	since := s.Today().AddDate(0, 0, -RecentWindowDays)
	scope.From = &since
	scope.Order = OrderAdministeredDesc
	return s.List(ctx, scope)
}

// Upcoming agrupa las dosis de una mascota en por vencer / vencidas.
type Upcoming struct {
	DueSoon []Event
	Overdue []Event
}

func (s *Service) Upcoming(ctx context.Context, petID string) (Upcoming, error) {
	items, err := s.List(ctx, ListFilter{PetID: petID, Order: OrderNextDoseAsc})
	if err != nil {
		return Upcoming{}, err
	}

	today := s.Today()
	out := Upcoming{DueSoon: []Event{}, Overdue: []Event{}}
	for _, e := range items {
		switch Derive(e, today).Status {
		case schedule.StatusDueSoon:
			out.DueSoon = append(out.DueSoon, e)
		case schedule.StatusOverdue:
			out.Overdue = append(out.Overdue, e)
		}
	}
	return out, nil
}

func (s *Service) loadVaccine(ctx context.Context, id string) (vaccines.Vaccine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return vaccines.Vaccine{}, apperr.Validation(map[string]string{"vaccine_id": "is required"})
	}
	v, err := s.vaccines.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return vaccines.Vaccine{}, apperr.Validation(map[string]string{"vaccine_id": "does not exist"})
	}
	return v, err
}

// validate consulta las dosis existentes y aplica Validate.
// El repo vuelve a garantizar la unicidad al persistir.
func (s *Service) validate(ctx context.Context, e Event, now time.Time) error {
	if e.Pet == nil {
		return apperr.Validation(map[string]string{"pet_id": "does not exist"})
	}

	var doses []Dose
	if e.PetID != "" && e.VaccineID != "" {
		found, err := s.repo.FindDoses(ctx, e.PetID, e.VaccineID)
		if err != nil {
			return err
		}
		doses = found
	}

	err := Validate(e, *e.Pet, schedule.Today(now), doses)
	if fields, ok := apperr.FieldErrors(err); ok {
		s.metrics.ObserveValidation("vaccination", fields)
	}
	return err
}

// mapStorageErr: la carrera check-then-write la cierra el repo con ErrDuplicateDose.
func (s *Service) mapStorageErr(err error) error {
	if errors.Is(err, ErrDuplicateDose) {
		s.metrics.ObserveValidation("vaccination", ErrDuplicateDose.Fields)
		return ErrDuplicateDose
	}
	return err
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := schedule.Day(*t)
	return &d
}
