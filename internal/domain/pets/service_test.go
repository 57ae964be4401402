package pets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/platform/apperr"
)

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(_ context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(_ context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type testOwners map[string]owners.Owner

func (d testOwners) GetByID(_ context.Context, id string) (owners.Owner, error) {
	o, ok := d[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, nil
}

func (d testOwners) GetByUserID(_ context.Context, userID string) (owners.Owner, error) {
	for _, o := range d {
		if o.UserID == userID {
			return o, nil
		}
	}
	return owners.Owner{}, owners.ErrNotFound
}

var (
	testNow   = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	testOwner = owners.Owner{ID: "owner-1", UserID: "user-1", Name: "Ana", Email: "ana@example.com"}
)

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, testOwners{testOwner.ID: testOwner})
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func validCreate() CreateInput {
	return CreateInput{
		Name:      "Rex",
		Species:   "Dog",
		BirthDate: time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC),
		Weight:    ptr(12.5),
	}
}

func TestCreate_LoadsOwnerAndNormalizes(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Create(context.Background(), testOwner, validCreate())
	require.NoError(t, err)

	assert.Equal(t, SpeciesDog, p.Species)
	assert.Equal(t, testOwner.ID, p.OwnerID)
	require.NotNil(t, p.Owner)
	assert.Equal(t, "Ana", p.Owner.Name)
	assert.Contains(t, repo.byID, p.ID)
}

func TestCreate_BirthDateInFuture(t *testing.T) {
	svc, _ := newTestService()

	in := validCreate()
	in.BirthDate = time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), testOwner, in)

	fields, ok := apperr.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "cannot be in the future", fields["birth_date"])
}

func TestCreate_BirthDateTodayIsValid(t *testing.T) {
	svc, _ := newTestService()

	in := validCreate()
	in.BirthDate = time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), testOwner, in)
	assert.NoError(t, err)
}

func TestCreate_StructuralRules(t *testing.T) {
	svc, _ := newTestService()

	in := CreateInput{Name: "", Species: "dragon", Weight: ptr(0.0)}
	_, err := svc.Create(context.Background(), testOwner, in)
	require.ErrorIs(t, err, apperr.ErrValidation)

	fields, _ := apperr.FieldErrors(err)
	assert.Equal(t, "is required", fields["name"])
	assert.Contains(t, fields["species"], "must be one of")
	assert.Equal(t, "is required", fields["birth_date"])
	assert.Equal(t, "must be greater than 0", fields["weight"])
}

func TestUpdate_WeightPatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, testOwner, validCreate())
	require.NoError(t, err)

	// no enviado: no toca
	updated, err := svc.Update(ctx, p.ID, UpdateInput{Name: ptr("Rex II")})
	require.NoError(t, err)
	require.NotNil(t, updated.Weight)
	assert.Equal(t, 12.5, *updated.Weight)

	// null: limpia
	updated, err = svc.Update(ctx, p.ID, UpdateInput{Weight: WeightPatch{Present: true}})
	require.NoError(t, err)
	assert.Nil(t, updated.Weight)

	_, err = svc.Update(ctx, p.ID, UpdateInput{Weight: WeightPatch{Present: true, Value: ptr(-1.0)}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

type testDoses map[string]time.Time

func (d testDoses) EarliestAdministered(_ context.Context, petID string) (*time.Time, error) {
	t, ok := d[petID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func TestUpdate_BirthDateAfterFirstDose(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, testOwner, validCreate())
	require.NoError(t, err)
	svc.doses = testDoses{p.ID: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)}

	_, err = svc.Update(ctx, p.ID, UpdateInput{BirthDate: ptr(time.Date(2021, 5, 2, 0, 0, 0, 0, time.UTC))})
	fields, ok := apperr.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "cannot be after the pet's first vaccination", fields["birth_date"])

	// el mismo día de la primera dosis es válido
	got, err := svc.Update(ctx, p.ID, UpdateInput{BirthDate: ptr(time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC), got.BirthDate)

	// sin vacunas no hay límite
	svc.doses = testDoses{}
	_, err = svc.Update(ctx, p.ID, UpdateInput{BirthDate: ptr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))})
	assert.NoError(t, err)
}

func TestAgeOf(t *testing.T) {
	p := Pet{BirthDate: time.Date(2020, 6, 20, 0, 0, 0, 0, time.UTC)}

	age := AgeOf(p, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Age{Years: 3, Months: 47}, age)

	age = AgeOf(p, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Age{Years: 4, Months: 48}, age)
}

func TestPet_ResolveOwner(t *testing.T) {
	owner := testOwner

	res, err := access.ResolveOwner(Pet{ID: "p1", OwnerID: owner.ID, Owner: &owner})
	require.NoError(t, err)
	assert.Equal(t, access.Resolved, res.Outcome)
	assert.Equal(t, "user-1", res.Owner.UserID)

	// sin Owner cargado
	res, err = access.ResolveOwner(Pet{ID: "p1", OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, access.Unresolved, res.Outcome)

	// Owner que no corresponde
	res, err = access.ResolveOwner(Pet{ID: "p1", OwnerID: "owner-2", Owner: &owner})
	require.NoError(t, err)
	assert.Equal(t, access.Unresolved, res.Outcome)
}

func TestEngine_PetPolicies(t *testing.T) {
	engine := access.NewEngine()
	owner := testOwner
	p := Pet{ID: "p1", OwnerID: owner.ID, Owner: &owner}

	self := access.Actor{UserID: "user-1"}
	stranger := access.Actor{UserID: "user-2"}
	staff := access.Actor{UserID: "vet", Privileged: true}

	assert.Equal(t, access.Allow, engine.Authorize(access.PolicyOwnerOrReadOnly, self, p, access.Write))
	// lecturas de mascotas: sólo dueño o staff
	assert.Equal(t, access.Allow, engine.Authorize(access.PolicyOwnerStrict, self, p, access.Read))
	assert.Equal(t, access.Deny, engine.Authorize(access.PolicyOwnerStrict, stranger, p, access.Read))
	assert.Equal(t, access.Allow, engine.Authorize(access.PolicyOwnerStrict, staff, p, access.Read))
	assert.Equal(t, access.Deny, engine.Authorize(access.PolicyOwnerOrReadOnly, stranger, p, access.Write))
	assert.Equal(t, access.Allow, engine.Authorize(access.PolicyOwnerOrReadOnly, staff, p, access.Write))

	// nil tipado => Deny, sin panic
	var missing *Pet
	assert.Equal(t, access.Deny, engine.Authorize(access.PolicyOwnerOrReadOnly, staff, missing, access.Read))
}
