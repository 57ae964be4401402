package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/metrics"
)

// OwnerDirectory es lo que pets necesita de owners (owners.Service lo cumple).
type OwnerDirectory interface {
	GetByID(ctx context.Context, id string) (owners.Owner, error)
	GetByUserID(ctx context.Context, userID string) (owners.Owner, error)
}

// DoseHistory da la primera vacunación registrada de una mascota (nil si no tiene).
// La implementa vaccinations sobre su repositorio.
type DoseHistory interface {
	EarliestAdministered(ctx context.Context, petID string) (*time.Time, error)
}

type Service struct {
	repo    Repository
	owners  OwnerDirectory
	doses   DoseHistory
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDoseHistory activa el chequeo birth_date <= primera vacunación en Update.
func WithDoseHistory(h DoseHistory) Option {
	return func(s *Service) { s.doses = h }
}

func NewService(repo Repository, dir OwnerDirectory, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		owners: dir,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today según el reloj del service.
func (s *Service) Today() time.Time {
	return schedule.Today(s.now())
}

type CreateInput struct {
	Name      string
	Species   Species
	Breed     string
	Color     string
	BirthDate time.Time
	Weight    *float64
	Notes     string
}

// Create registra una mascota para owner (ya cargado y autorizado por el caller).
func (s *Service) Create(ctx context.Context, owner owners.Owner, in CreateInput) (Pet, error) {
	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Owner:     &owner,
		Name:      strings.TrimSpace(in.Name),
		Species:   Species(strings.ToLower(strings.TrimSpace(string(in.Species)))),
		Breed:     strings.TrimSpace(in.Breed),
		Color:     strings.TrimSpace(in.Color),
		BirthDate: schedule.Day(in.BirthDate),
		Weight:    in.Weight,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.validate(p, now); err != nil {
		return Pet{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// WeightPatch permite distinguir "weight": null (limpiar) de "no enviado".
type WeightPatch struct {
	Present bool
	Value   *float64
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name      *string
	Species   *Species
	Breed     *string
	Color     *string
	BirthDate *time.Time
	Weight    WeightPatch
	Notes     *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		p.Species = Species(strings.ToLower(strings.TrimSpace(string(*in.Species))))
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Color != nil {
		p.Color = strings.TrimSpace(*in.Color)
	}
	if in.BirthDate != nil {
		p.BirthDate = schedule.Day(*in.BirthDate)
	}
	if in.Weight.Present {
		p.Weight = in.Weight.Value
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	now := s.now()
	p.UpdatedAt = now

	if err := s.validate(p, now); err != nil {
		return Pet{}, err
	}
	if in.BirthDate != nil {
		if err := s.checkBirthBeforeDoses(ctx, p); err != nil {
			return Pet{}, err
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, error) {
	f.Query = strings.TrimSpace(f.Query)
	return s.repo.List(ctx, f)
}

// Owner carga un dueño por id.
func (s *Service) Owner(ctx context.Context, ownerID string) (owners.Owner, error) {
	return s.owners.GetByID(ctx, ownerID)
}

// OwnerOfUser carga el perfil de dueño de una identidad.
func (s *Service) OwnerOfUser(ctx context.Context, userID string) (owners.Owner, error) {
	return s.owners.GetByUserID(ctx, userID)
}

// checkBirthBeforeDoses: mover birth_date no puede dejar vacunaciones antes del nacimiento.
func (s *Service) checkBirthBeforeDoses(ctx context.Context, p Pet) error {
	if s.doses == nil {
		return nil
	}
	first, err := s.doses.EarliestAdministered(ctx, p.ID)
	if err != nil {
		return err
	}
	if first != nil && schedule.Day(p.BirthDate).After(schedule.Day(*first)) {
		fields := map[string]string{"birth_date": "cannot be after the pet's first vaccination"}
		s.metrics.ObserveValidation("pet", fields)
		return apperr.Validation(fields)
	}
	return nil
}

func (s *Service) validate(p Pet, now time.Time) error {
	err := Validate(p, schedule.Today(now))
	if fields, ok := apperr.FieldErrors(err); ok {
		s.metrics.ObserveValidation("pet", fields)
	}
	return err
}
