package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-vaccination-schedule/internal/domain/owners"
)

type ownerRepo struct {
	s *Store
}

func (r *ownerRepo) Create(ctx context.Context, o owners.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.s.owners[o.ID]; exists {
		return errors.New("owner already exists")
	}
	if err := r.checkUnique(o); err != nil {
		return err
	}
	r.s.owners[o.ID] = o
	return nil
}

func (r *ownerRepo) Update(ctx context.Context, o owners.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.owners[o.ID]; !exists {
		return owners.ErrNotFound
	}
	if err := r.checkUnique(o); err != nil {
		return err
	}
	r.s.owners[o.ID] = o
	return nil
}

// checkUnique: un perfil por usuario y email único (sin distinguir mayúsculas).
func (r *ownerRepo) checkUnique(o owners.Owner) error {
	for _, cur := range r.s.owners {
		if cur.ID == o.ID {
			continue
		}
		if cur.UserID == o.UserID {
			return owners.ErrAlreadyExists
		}
		if strings.EqualFold(cur.Email, o.Email) {
			return owners.ErrEmailTaken
		}
	}
	return nil
}

func (r *ownerRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.owners[id]; !exists {
		return owners.ErrNotFound
	}
	for petID, p := range r.s.pets {
		if p.OwnerID == id {
			r.s.deletePetLocked(petID)
		}
	}
	delete(r.s.owners, id)
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.owners[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, nil
}

func (r *ownerRepo) GetByUserID(ctx context.Context, userID string) (owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.owners {
		if o.UserID == userID {
			return o, nil
		}
	}
	return owners.Owner{}, owners.ErrNotFound
}

func (r *ownerRepo) List(ctx context.Context, f owners.ListFilter) ([]owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]owners.Owner, 0)
	for _, o := range r.s.owners {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Query != "" && !contains(o.Name+" "+o.Email, f.Query) {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
