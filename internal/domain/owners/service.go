package owners

import (
	"context"
	"errors"
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

// WithMetrics cuenta los rechazos de validación.
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

type RegisterInput struct {
	UserID  string
	Name    string
	Email   string
	Phone   string
	Address string
}

// Register crea el perfil de dueño para una identidad. Una identidad, un perfil.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Owner, error) {
	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(in.UserID),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.validate(o); err != nil {
		return Owner{}, err
	}

	if _, err := s.repo.GetByUserID(ctx, o.UserID); err == nil {
		return Owner{}, ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return Owner{}, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Owner{}, err
	}

	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		o.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		o.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		o.Address = strings.TrimSpace(*in.Address)
	}
	o.UpdatedAt = s.now()

	if err := s.validate(o); err != nil {
		return Owner{}, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Owner, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Owner{}, ErrNotFound
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Owner, error) {
	f.Query = strings.TrimSpace(f.Query)
	return s.repo.List(ctx, f)
}

func (s *Service) validate(o Owner) error {
	err := Validate(o)
	if fields, ok := apperr.FieldErrors(err); ok {
		s.metrics.ObserveValidation("owner", fields)
	}
	return err
}
