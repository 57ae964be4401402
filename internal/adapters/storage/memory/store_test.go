package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
	"pet-vaccination-schedule/internal/platform/apperr"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

type seeded struct {
	store  *Store
	ana    owners.Owner
	rex    pets.Pet
	rabies vaccines.Vaccine
}

func seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	ana := owners.Owner{ID: "owner-1", UserID: "user-1", Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, s.Owners().Create(ctx, ana))

	rex := pets.Pet{ID: "pet-1", OwnerID: ana.ID, Name: "Rex", Species: pets.SpeciesDog, BirthDate: day(2020, 3, 10)}
	require.NoError(t, s.Pets().Create(ctx, rex))

	rabies := vaccines.Vaccine{ID: "vac-1", Name: "Rabies", DurationMonths: 12}
	require.NoError(t, s.Vaccines().Create(ctx, rabies))

	return seeded{store: s, ana: ana, rex: rex, rabies: rabies}
}

func event(id string, administered time.Time, next *time.Time) vaccinations.Event {
	return vaccinations.Event{
		ID:               id,
		PetID:            "pet-1",
		VaccineID:        "vac-1",
		AdministeredDate: administered,
		VeterinarianName: "Dr. Smith",
		NextDoseDate:     next,
	}
}

func TestOwners_Uniqueness(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	repo := sd.store.Owners()

	err := repo.Create(ctx, owners.Owner{ID: "owner-2", UserID: "user-1", Email: "other@example.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = repo.Create(ctx, owners.Owner{ID: "owner-2", UserID: "user-2", Email: "ANA@example.com"})
	require.ErrorIs(t, err, apperr.ErrIntegrity)
	fields, _ := apperr.FieldErrors(err)
	assert.Contains(t, fields, "email")

	// actualizar el propio registro no choca consigo mismo
	assert.NoError(t, repo.Update(ctx, sd.ana))
}

func TestPets_LoadedWithOwner(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()

	p, err := sd.store.Pets().GetByID(ctx, sd.rex.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Owner)
	assert.Equal(t, "user-1", p.Owner.UserID)

	list, err := sd.store.Pets().List(ctx, pets.ListFilter{OwnerUserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Owner)

	list, err = sd.store.Pets().List(ctx, pets.ListFilter{OwnerUserID: "user-2"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPets_UnknownOwner(t *testing.T) {
	sd := seed(t)

	err := sd.store.Pets().Create(context.Background(), pets.Pet{ID: "pet-x", OwnerID: "ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVaccinations_DuplicateTriple(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	repo := sd.store.Vaccinations()

	require.NoError(t, repo.Create(ctx, event("ev-1", day(2024, 1, 10), nil)))

	err := repo.Create(ctx, event("ev-2", day(2024, 1, 10), nil))
	assert.ErrorIs(t, err, apperr.ErrIntegrity)

	require.NoError(t, repo.Create(ctx, event("ev-2", day(2024, 1, 11), nil)))
	err = repo.Update(ctx, event("ev-2", day(2024, 1, 10), nil))
	assert.ErrorIs(t, err, apperr.ErrIntegrity)

	doses, err := repo.FindDoses(ctx, "pet-1", "vac-1")
	require.NoError(t, err)
	assert.Len(t, doses, 2)
}

func TestVaccinations_ConcurrentDuplicatesOnlyOneWins(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	repo := sd.store.Vaccinations()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, event("ev-"+string(rune('a'+i)), day(2024, 1, 10), nil))
			if err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
}

func TestVaccinations_LoadedRelations(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	repo := sd.store.Vaccinations()

	require.NoError(t, repo.Create(ctx, event("ev-1", day(2024, 1, 10), nil)))

	e, err := repo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	require.NotNil(t, e.Pet)
	require.NotNil(t, e.Pet.Owner)
	require.NotNil(t, e.Vaccine)
	assert.Equal(t, "Rabies", e.Vaccine.Name)
	assert.Equal(t, "user-1", e.Pet.Owner.UserID)
}

func TestVaccinations_ListFilters(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	repo := sd.store.Vaccinations()

	require.NoError(t, repo.Create(ctx, event("ev-old", day(2023, 1, 10), ptrTime(day(2024, 1, 10)))))
	require.NoError(t, repo.Create(ctx, event("ev-mid", day(2023, 6, 1), ptrTime(day(2024, 7, 1)))))
	require.NoError(t, repo.Create(ctx, event("ev-new", day(2024, 6, 1), nil)))

	ids := func(items []vaccinations.Event) []string {
		out := []string{}
		for _, e := range items {
			out = append(out, e.ID)
		}
		return out
	}

	all, err := repo.List(ctx, vaccinations.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-new", "ev-mid", "ev-old"}, ids(all))

	byNext, err := repo.List(ctx, vaccinations.ListFilter{Order: vaccinations.OrderNextDoseAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-old", "ev-mid", "ev-new"}, ids(byNext))

	ranged, err := repo.List(ctx, vaccinations.ListFilter{
		NextDoseFrom: ptrTime(day(2024, 6, 15)),
		NextDoseTo:   ptrTime(day(2024, 7, 15)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-mid"}, ids(ranged))

	since, err := repo.List(ctx, vaccinations.ListFilter{From: ptrTime(day(2023, 6, 1))})
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-new", "ev-mid"}, ids(since))

	scoped, err := repo.List(ctx, vaccinations.ListFilter{OwnerUserID: "user-2"})
	require.NoError(t, err)
	assert.Empty(t, scoped)

	q, err := repo.List(ctx, vaccinations.ListFilter{Query: "rabi", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-new"}, ids(q))
}

func TestCascadeAndProtect(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	s := sd.store

	require.NoError(t, s.Vaccinations().Create(ctx, event("ev-1", day(2024, 1, 10), nil)))

	// vacuna en uso: protegida
	err := s.Vaccines().Delete(ctx, "vac-1")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// borrar el dueño borra mascotas y vacunaciones
	require.NoError(t, s.Owners().Delete(ctx, sd.ana.ID))

	_, err = s.Pets().GetByID(ctx, sd.rex.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.Vaccinations().GetByID(ctx, "ev-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// ya sin referencias la vacuna se puede borrar
	assert.NoError(t, s.Vaccines().Delete(ctx, "vac-1"))
}

func TestVaccines_NameUniqueAndFilters(t *testing.T) {
	sd := seed(t)
	ctx := context.Background()
	repo := sd.store.Vaccines()

	err := repo.Create(ctx, vaccines.Vaccine{ID: "vac-2", Name: "RABIES"})
	assert.ErrorIs(t, err, apperr.ErrIntegrity)

	require.NoError(t, repo.Create(ctx, vaccines.Vaccine{ID: "vac-3", Name: "FVRCP", SpeciesTarget: "Cat", Mandatory: true}))

	yes := true
	list, err := repo.List(ctx, vaccines.ListFilter{Mandatory: &yes})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "FVRCP", list[0].Name)

	list, err = repo.List(ctx, vaccines.ListFilter{Species: "cat"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
