package memory

import (
	"context"
	"errors"
	"sort"

	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
)

type vaccinationRepo struct {
	s *Store
}

func (r *vaccinationRepo) Create(ctx context.Context, e vaccinations.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == "" {
		return errors.New("vaccination id required")
	}
	if _, exists := r.s.events[e.ID]; exists {
		return errors.New("vaccination already exists")
	}
	return r.putLocked(e)
}

func (r *vaccinationRepo) Update(ctx context.Context, e vaccinations.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.events[e.ID]; !exists {
		return vaccinations.ErrNotFound
	}
	return r.putLocked(e)
}

// putLocked chequea referencias y la unicidad (pet, vaccine, día) en el mismo lock que escribe.
func (r *vaccinationRepo) putLocked(e vaccinations.Event) error {
	if _, ok := r.s.pets[e.PetID]; !ok {
		return pets.ErrNotFound
	}
	if _, ok := r.s.vaccines[e.VaccineID]; !ok {
		return vaccines.ErrNotFound
	}

	t := e.Triple()
	for _, cur := range r.s.events {
		if cur.ID != e.ID && cur.Triple().Equal(t) {
			return vaccinations.ErrDuplicateDose
		}
	}

	e.Pet, e.Vaccine = nil, nil
	r.s.events[e.ID] = e
	return nil
}

func (r *vaccinationRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.events[id]; !exists {
		return vaccinations.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *vaccinationRepo) GetByID(ctx context.Context, id string) (vaccinations.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return vaccinations.Event{}, vaccinations.ErrNotFound
	}
	return r.s.loadEvent(e), nil
}

func (r *vaccinationRepo) List(ctx context.Context, f vaccinations.ListFilter) ([]vaccinations.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]vaccinations.Event, 0)

	for _, raw := range r.s.events {
		if f.PetID != "" && raw.PetID != f.PetID {
			continue
		}
		if f.VaccineID != "" && raw.VaccineID != f.VaccineID {
			continue
		}

		e := r.s.loadEvent(raw)
		if e.Pet == nil || e.Vaccine == nil {
			continue
		}
		if f.OwnerID != "" && e.Pet.OwnerID != f.OwnerID {
			continue
		}
		if f.OwnerUserID != "" && (e.Pet.Owner == nil || e.Pet.Owner.UserID != f.OwnerUserID) {
			continue
		}

		// Fechas de aplicación (inclusivas)
		if f.From != nil && e.AdministeredDate.Before(*f.From) {
			continue
		}
		if f.To != nil && e.AdministeredDate.After(*f.To) {
			continue
		}

		// Próxima dosis: un rango excluye los eventos sin próxima dosis
		if f.NextDoseFrom != nil || f.NextDoseTo != nil {
			if e.NextDoseDate == nil {
				continue
			}
			if f.NextDoseFrom != nil && e.NextDoseDate.Before(*f.NextDoseFrom) {
				continue
			}
			if f.NextDoseTo != nil && e.NextDoseDate.After(*f.NextDoseTo) {
				continue
			}
		}

		if f.Query != "" {
			hay := e.Pet.Name + " " + e.Vaccine.Name + " " + e.VeterinarianName + " " + e.ClinicName
			if !contains(hay, f.Query) {
				continue
			}
		}

		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.Order == vaccinations.OrderNextDoseAsc {
			// sin próxima dosis al final
			switch {
			case a.NextDoseDate == nil && b.NextDoseDate == nil:
			case a.NextDoseDate == nil:
				return false
			case b.NextDoseDate == nil:
				return true
			case !a.NextDoseDate.Equal(*b.NextDoseDate):
				return a.NextDoseDate.Before(*b.NextDoseDate)
			}
			return a.ID < b.ID
		}
		// más reciente primero
		if !a.AdministeredDate.Equal(b.AdministeredDate) {
			return a.AdministeredDate.After(b.AdministeredDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}

func (r *vaccinationRepo) FindDoses(ctx context.Context, petID, vaccineID string) ([]vaccinations.Dose, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]vaccinations.Dose, 0)
	for _, e := range r.s.events {
		if e.PetID == petID && e.VaccineID == vaccineID {
			out = append(out, vaccinations.Dose{EventID: e.ID, Triple: e.Triple()})
		}
	}
	return out, nil
}
