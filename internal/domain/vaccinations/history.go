package vaccinations

import (
	"context"
	"time"
)

// DoseHistory implementa pets.DoseHistory sobre el repositorio de vacunaciones.
// Usa el repo y no el Service, que ya depende de pets.
type DoseHistory struct {
	repo Repository
}

func NewDoseHistory(repo Repository) *DoseHistory {
	return &DoseHistory{repo: repo}
}

func (h *DoseHistory) EarliestAdministered(ctx context.Context, petID string) (*time.Time, error) {
	items, err := h.repo.List(ctx, ListFilter{PetID: petID})
	if err != nil {
		return nil, err
	}

	var first *time.Time
	for _, e := range items {
		if first == nil || e.AdministeredDate.Before(*first) {
			d := e.AdministeredDate
			first = &d
		}
	}
	return first, nil
}
