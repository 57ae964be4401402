package vaccinations

import (
	"context"
	"time"
)

// Order de los listados.
type Order int

const (
	OrderAdministeredDesc Order = iota // más recientes primero (default)
	OrderNextDoseAsc                   // próxima dosis más cercana primero
)

// ListFilter: campos vacíos/nil no filtran. Rangos de fecha inclusivos.
type ListFilter struct {
	OwnerID     string
	OwnerUserID string // scoping para actores no privilegiados
	PetID       string
	VaccineID   string

	From *time.Time // administered_date >= From
	To   *time.Time // administered_date <= To

	NextDoseFrom *time.Time // next_dose_date >= NextDoseFrom (excluye sin próxima dosis)
	NextDoseTo   *time.Time // next_dose_date <= NextDoseTo (excluye sin próxima dosis)

	Query string // pet name, vaccine name, veterinarian, clinic
	Order Order
	Limit int // 0 = sin límite
}

// Repository devuelve eventos con Pet (y su Owner) y Vaccine cargados.
type Repository interface {
	// Create/Update fallan con ErrDuplicateDose si la Triple ya existe en otro evento.
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, f ListFilter) ([]Event, error)
	// FindDoses devuelve las dosis registradas de vaccineID para petID.
	FindDoses(ctx context.Context, petID, vaccineID string) ([]Dose, error)
}
