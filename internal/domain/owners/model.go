package owners

import (
	"time"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/validation"
)

var (
	ErrNotFound      = apperr.NotFound("owner not found")
	ErrAlreadyExists = apperr.Conflict("owner profile already exists for this user")
	ErrEmailTaken    = apperr.Integrity("email", "is already registered")
)

// Owner es el dueño de mascotas. Vinculado 1:1 a una identidad externa (UserID).
type Owner struct {
	ID     string `json:"id"`
	UserID string `json:"user_id" validate:"notblank,max=128"`

	Name    string `json:"name" validate:"notblank,max=150"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,max=20,phone"`
	Address string `json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityKind: un Owner es su propio dueño.
func (o Owner) EntityKind() access.Kind { return access.KindOwner }

func (o Owner) ResolveOwner() access.Resolution {
	return access.Owned(o.ID, o.UserID)
}

var validate = validation.New()

// Validate chequea reglas estructurales. La unicidad de email y user_id la garantiza el repo.
func Validate(o Owner) error {
	return validate.Validate(o)
}
