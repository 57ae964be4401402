package pets

import "context"

// ListFilter: campos vacíos no filtran.
type ListFilter struct {
	OwnerID     string
	OwnerUserID string // scoping para actores no privilegiados
	Species     Species
	Query       string // busca en name/breed
}

// Repository devuelve siempre las mascotas con Owner cargado.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	// Delete borra en cascada las vacunaciones de la mascota.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, f ListFilter) ([]Pet, error)
}
