package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-vaccination-schedule/internal/domain/vaccines"
)

type vaccineRepo struct {
	s *Store
}

func (r *vaccineRepo) Create(ctx context.Context, v vaccines.Vaccine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("vaccine id required")
	}
	if _, exists := r.s.vaccines[v.ID]; exists {
		return errors.New("vaccine already exists")
	}
	if r.nameTaken(v) {
		return vaccines.ErrNameTaken
	}
	r.s.vaccines[v.ID] = v
	return nil
}

func (r *vaccineRepo) Update(ctx context.Context, v vaccines.Vaccine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.vaccines[v.ID]; !exists {
		return vaccines.ErrNotFound
	}
	if r.nameTaken(v) {
		return vaccines.ErrNameTaken
	}
	r.s.vaccines[v.ID] = v
	return nil
}

func (r *vaccineRepo) nameTaken(v vaccines.Vaccine) bool {
	for _, cur := range r.s.vaccines {
		if cur.ID != v.ID && strings.EqualFold(cur.Name, v.Name) {
			return true
		}
	}
	return false
}

// Delete no borra en cascada: una vacuna referenciada queda protegida.
func (r *vaccineRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.vaccines[id]; !exists {
		return vaccines.ErrNotFound
	}
	for _, e := range r.s.events {
		if e.VaccineID == id {
			return vaccines.ErrInUse
		}
	}
	delete(r.s.vaccines, id)
	return nil
}

func (r *vaccineRepo) GetByID(ctx context.Context, id string) (vaccines.Vaccine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vaccines[id]
	if !ok {
		return vaccines.Vaccine{}, vaccines.ErrNotFound
	}
	return v, nil
}

func (r *vaccineRepo) List(ctx context.Context, f vaccines.ListFilter) ([]vaccines.Vaccine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]vaccines.Vaccine, 0)
	for _, v := range r.s.vaccines {
		if f.Species != "" && !contains(v.SpeciesTarget, f.Species) {
			continue
		}
		if f.Mandatory != nil && v.Mandatory != *f.Mandatory {
			continue
		}
		if f.Query != "" && !contains(v.Name+" "+v.Manufacturer, f.Query) {
			continue
		}
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
