package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	if _, ok := r.s.owners[p.OwnerID]; !ok {
		return owners.ErrNotFound
	}

	p.Owner = nil
	r.s.pets[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.pets[p.ID]; !exists {
		return pets.ErrNotFound
	}
	if _, ok := r.s.owners[p.OwnerID]; !ok {
		return owners.ErrNotFound
	}

	p.Owner = nil
	r.s.pets[p.ID] = p
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.pets[id]; !exists {
		return pets.ErrNotFound
	}
	r.s.deletePetLocked(id)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return r.s.loadPet(p), nil
}

func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.s.pets {
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		if f.OwnerUserID != "" && r.s.owners[p.OwnerID].UserID != f.OwnerUserID {
			continue
		}
		if f.Species != "" && p.Species != f.Species {
			continue
		}
		if f.Query != "" && !contains(p.Name+" "+p.Breed, f.Query) {
			continue
		}
		out = append(out, r.s.loadPet(p))
	}

	// Orden por nombre (como el listado de la API)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
