package vaccines

import "context"

type ListFilter struct {
	Species   string // contenido en species_target
	Mandatory *bool
	Query     string // name/manufacturer
}

type Repository interface {
	// Create/Update fallan con ErrNameTaken si el nombre ya existe.
	Create(ctx context.Context, v Vaccine) error
	Update(ctx context.Context, v Vaccine) error
	// Delete falla con ErrInUse mientras haya vacunaciones que la usen.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Vaccine, error)
	List(ctx context.Context, f ListFilter) ([]Vaccine, error)
}
