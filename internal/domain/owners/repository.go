package owners

import "context"

// ListFilter: campos vacíos no filtran.
type ListFilter struct {
	UserID string
	Query  string // busca en name/email
}

type Repository interface {
	// Create falla con ErrAlreadyExists (user_id) o ErrEmailTaken (email).
	Create(ctx context.Context, o Owner) error
	Update(ctx context.Context, o Owner) error
	// Delete borra en cascada mascotas y vacunaciones.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Owner, error)
	GetByUserID(ctx context.Context, userID string) (Owner, error)
	List(ctx context.Context, f ListFilter) ([]Owner, error)
}
