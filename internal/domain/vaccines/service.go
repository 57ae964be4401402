package vaccines

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/metrics"
)

type Service struct {
	repo    Repository
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateInput struct {
	Name           string
	Manufacturer   string
	Description    string
	SpeciesTarget  string
	DurationMonths int
	Mandatory      bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Vaccine, error) {
	now := s.now()
	v := Vaccine{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Manufacturer:   strings.TrimSpace(in.Manufacturer),
		Description:    strings.TrimSpace(in.Description),
		SpeciesTarget:  strings.TrimSpace(in.SpeciesTarget),
		DurationMonths: in.DurationMonths,
		Mandatory:      in.Mandatory,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.validate(v); err != nil {
		return Vaccine{}, err
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return Vaccine{}, err
	}
	return v, nil
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name           *string
	Manufacturer   *string
	Description    *string
	SpeciesTarget  *string
	DurationMonths *int
	Mandatory      *bool
}

// Update no recalcula próximas dosis ya registradas.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Vaccine, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return Vaccine{}, err
	}

	if in.Name != nil {
		v.Name = strings.TrimSpace(*in.Name)
	}
	if in.Manufacturer != nil {
		v.Manufacturer = strings.TrimSpace(*in.Manufacturer)
	}
	if in.Description != nil {
		v.Description = strings.TrimSpace(*in.Description)
	}
	if in.SpeciesTarget != nil {
		v.SpeciesTarget = strings.TrimSpace(*in.SpeciesTarget)
	}
	if in.DurationMonths != nil {
		v.DurationMonths = *in.DurationMonths
	}
	if in.Mandatory != nil {
		v.Mandatory = *in.Mandatory
	}
	v.UpdatedAt = s.now()

	if err := s.validate(v); err != nil {
		return Vaccine{}, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return Vaccine{}, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Vaccine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Vaccine{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Vaccine, error) {
	f.Species = strings.TrimSpace(f.Species)
	f.Query = strings.TrimSpace(f.Query)
	return s.repo.List(ctx, f)
}

func (s *Service) validate(v Vaccine) error {
	err := Validate(v)
	if fields, ok := apperr.FieldErrors(err); ok {
		s.metrics.ObserveValidation("vaccine", fields)
	}
	return err
}
