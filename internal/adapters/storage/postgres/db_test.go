package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
	"pet-vaccination-schedule/internal/platform/apperr"
)

func TestMapWriteErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"dosis duplicada", &pgconn.PgError{Code: "23505", ConstraintName: "vaccination_events_dose_key"}, vaccinations.ErrDuplicateDose},
		{"perfil duplicado", &pgconn.PgError{Code: "23505", ConstraintName: "owners_user_id_key"}, owners.ErrAlreadyExists},
		{"email duplicado", &pgconn.PgError{Code: "23505", ConstraintName: "owners_email_key"}, owners.ErrEmailTaken},
		{"nombre de vacuna", &pgconn.PgError{Code: "23505", ConstraintName: "vaccines_name_key"}, vaccines.ErrNameTaken},
		{"mascota inexistente", &pgconn.PgError{Code: "23503", ConstraintName: "vaccination_events_pet_id_fkey"}, pets.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapWriteErr(tt.err))
		})
	}

	other := errors.New("boom")
	assert.Equal(t, other, mapWriteErr(other))
	assert.NoError(t, mapWriteErr(nil))
}

func TestMapWriteErr_DuplicateIsFieldError(t *testing.T) {
	err := mapWriteErr(&pgconn.PgError{Code: "23505", ConstraintName: "vaccination_events_dose_key"})

	fields, ok := apperr.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "administered_date")
}

func TestQueryLike_EscapesWildcards(t *testing.T) {
	var q query

	assert.Equal(t, "$1", q.like(" rex "))
	assert.Equal(t, "$2", q.like(`50%_off\`))
	assert.Equal(t, []any{"%rex%", `%50\%\_off\\%`}, q.args)
}

// openTestDB usa PETVAX_TEST_DSN; sin DSN el test se saltea.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("PETVAX_TEST_DSN")
	if dsn == "" {
		t.Skip("PETVAX_TEST_DSN not set")
	}

	db, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestRepos_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	ownersRepo := NewOwnersRepo(db)
	petsRepo := NewPetsRepo(db)
	vaccinesRepo := NewVaccinesRepo(db)
	eventsRepo := NewVaccinationsRepo(db)

	o := owners.Owner{
		ID:        uuid.NewString(),
		UserID:    uuid.NewString(),
		Name:      "Ana",
		Email:     uuid.NewString() + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, ownersRepo.Create(ctx, o))
	t.Cleanup(func() { _ = ownersRepo.Delete(ctx, o.ID) })

	w := 12.5
	p := pets.Pet{
		ID:        uuid.NewString(),
		OwnerID:   o.ID,
		Name:      "Rex",
		Species:   pets.SpeciesDog,
		BirthDate: time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC),
		Weight:    &w,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, petsRepo.Create(ctx, p))

	v := vaccines.Vaccine{ID: uuid.NewString(), Name: "Rabies " + uuid.NewString(), DurationMonths: 12, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, vaccinesRepo.Create(ctx, v))

	next := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	e := vaccinations.Event{
		ID:               uuid.NewString(),
		PetID:            p.ID,
		VaccineID:        v.ID,
		AdministeredDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		VeterinarianName: "Dr. Smith",
		NextDoseDate:     &next,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, eventsRepo.Create(ctx, e))

	got, err := eventsRepo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Pet)
	require.NotNil(t, got.Pet.Owner)
	assert.Equal(t, o.UserID, got.Pet.Owner.UserID)
	assert.Equal(t, v.Name, got.Vaccine.Name)
	assert.Equal(t, next, *got.NextDoseDate)

	// misma Triple con otro ID
	dup := e
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, eventsRepo.Create(ctx, dup), apperr.ErrIntegrity)

	// vacuna protegida mientras haya eventos
	assert.ErrorIs(t, vaccinesRepo.Delete(ctx, v.ID), apperr.ErrConflict)

	// cascada desde el dueño
	require.NoError(t, ownersRepo.Delete(ctx, o.ID))
	_, err = eventsRepo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, vaccinesRepo.Delete(ctx, v.ID))
}
