package access

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/logger"
	"pet-vaccination-schedule/internal/platform/metrics"
)

// -------------------------
// Entidades de prueba
// -------------------------

type fakeEntity struct {
	kind Kind
	res  Resolution
}

func (f fakeEntity) EntityKind() Kind         { return f.kind }
func (f fakeEntity) ResolveOwner() Resolution { return f.res }

var (
	ownerActor    = Actor{UserID: "user-owner"}
	strangerActor = Actor{UserID: "user-stranger"}
	staffActor    = Actor{UserID: "user-staff", Privileged: true}
	anonymous     = Actor{}

	ownedPet    = fakeEntity{kind: KindPet, res: Owned("owner-1", "user-owner")}
	ownedRecord = fakeEntity{kind: KindVaccination, res: Owned("owner-1", "user-owner")}
	profile     = fakeEntity{kind: KindOwner, res: Owned("owner-1", "user-owner")}
	vaccine     = fakeEntity{kind: KindVaccine, res: Shared()}
	brokenPet   = fakeEntity{kind: KindPet, res: Unresolvable()}
)

// -------------------------
// Resolver
// -------------------------

func TestResolveOwner(t *testing.T) {
	res, err := ResolveOwner(ownedPet)
	require.NoError(t, err)
	assert.Equal(t, Resolved, res.Outcome)
	assert.Equal(t, OwnerRef{OwnerID: "owner-1", UserID: "user-owner"}, res.Owner)

	res, err = ResolveOwner(vaccine)
	require.NoError(t, err)
	assert.Equal(t, NoOwner, res.Outcome)

	res, err = ResolveOwner(brokenPet)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, res.Outcome)

	res, err = ResolveOwner(nil)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, res.Outcome)
}

func TestResolveOwner_ProgrammingErrors(t *testing.T) {
	_, err := ResolveOwner(fakeEntity{kind: "invoice", res: Owned("o", "u")})
	assert.True(t, apperr.IsProgramming(err))

	_, err = ResolveOwner(fakeEntity{kind: KindPet, res: Shared()})
	assert.True(t, apperr.IsProgramming(err))

	_, err = ResolveOwner(fakeEntity{kind: KindVaccine, res: Owned("o", "u")})
	assert.True(t, apperr.IsProgramming(err))
}

func TestOwned_RequiresIdentity(t *testing.T) {
	assert.Equal(t, Unresolved, Owned("owner-1", " ").Outcome)
	assert.Equal(t, Unresolved, Owned("", "user").Outcome)
}

// -------------------------
// Engine
// -------------------------

func TestAuthorize_OwnerOrReadOnly(t *testing.T) {
	e := NewEngine()
	p := PolicyOwnerOrReadOnly

	tests := []struct {
		name   string
		actor  Actor
		entity Entity
		op     Operation
		want   Decision
	}{
		{"owner writes own pet", ownerActor, ownedPet, Write, Allow},
		{"stranger reads pet", strangerActor, ownedPet, Read, Allow},
		{"stranger writes pet", strangerActor, ownedPet, Write, Deny}, // escenario F
		{"stranger writes record", strangerActor, ownedRecord, Write, Deny},
		{"staff writes pet", staffActor, ownedPet, Write, Allow},
		{"anonymous reads pet", anonymous, ownedPet, Read, Deny},
		{"nil entity", ownerActor, nil, Read, Deny},
		{"broken chain read", ownerActor, brokenPet, Read, Deny},
		{"broken chain staff write", staffActor, brokenPet, Write, Deny},
		{"shared write by owner", ownerActor, vaccine, Write, Deny},
		{"shared write by staff", staffActor, vaccine, Write, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Authorize(p, tt.actor, tt.entity, tt.op))
		})
	}
}

func TestAuthorize_OwnerStrict(t *testing.T) {
	e := NewEngine()
	p := PolicyOwnerStrict

	assert.Equal(t, Allow, e.Authorize(p, ownerActor, profile, Read))
	assert.Equal(t, Allow, e.Authorize(p, ownerActor, profile, Write))
	assert.Equal(t, Deny, e.Authorize(p, strangerActor, profile, Read))
	assert.Equal(t, Deny, e.Authorize(p, strangerActor, profile, Write))
	assert.Equal(t, Allow, e.Authorize(p, staffActor, profile, Read))
	assert.Equal(t, Allow, e.Authorize(p, staffActor, profile, Write))
}

func TestAuthorize_AdminOrReadOnly(t *testing.T) {
	e := NewEngine()
	p := PolicyAdminOrReadOnly

	assert.Equal(t, Allow, e.Authorize(p, strangerActor, vaccine, Read))
	assert.Equal(t, Deny, e.Authorize(p, strangerActor, vaccine, Write))
	assert.Equal(t, Allow, e.Authorize(p, staffActor, vaccine, Write))
	assert.Equal(t, Deny, e.Authorize(p, anonymous, vaccine, Read))
}

func TestAuthorize_UnknownPolicyDenies(t *testing.T) {
	assert.Equal(t, Deny, NewEngine().Authorize("whatever", staffActor, ownedPet, Read))
}

// Para cualquier pet: el dueño escribe, otro no-staff no, staff siempre.
func TestAuthorize_OwnershipProperty(t *testing.T) {
	e := NewEngine()
	for _, uid := range []string{"u-1", "u-2", "u-3"} {
		pet := fakeEntity{kind: KindPet, res: Owned("owner-"+uid, uid)}

		assert.Equal(t, Allow, e.Authorize(PolicyOwnerOrReadOnly, Actor{UserID: uid}, pet, Write))
		assert.Equal(t, Deny, e.Authorize(PolicyOwnerOrReadOnly, Actor{UserID: uid + "-other"}, pet, Write))
		assert.Equal(t, Allow, e.Authorize(PolicyOwnerOrReadOnly, Actor{UserID: "admin", Privileged: true}, pet, Write))
	}
}

func TestAuthorize_ProgrammingErrorPanicsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(WithLogger(logger.New(logger.Options{Writer: &buf})))

	assert.PanicsWithError(t, `programming error: unknown entity kind "invoice" (access.fakeEntity)`, func() {
		e.Authorize(PolicyOwnerOrReadOnly, staffActor, fakeEntity{kind: "invoice"}, Read)
	})
	assert.Contains(t, buf.String(), "ownership resolution failed")
}

func TestAuthorize_CountsDecisions(t *testing.T) {
	m := metrics.New()
	e := NewEngine(WithMetrics(m))

	e.Authorize(PolicyOwnerOrReadOnly, strangerActor, ownedPet, Write)
	e.Authorize(PolicyOwnerOrReadOnly, ownerActor, ownedPet, Write)

	deny := m.AuthzDecisions.WithLabelValues(string(PolicyOwnerOrReadOnly), string(KindPet), string(Write), "deny")
	allow := m.AuthzDecisions.WithLabelValues(string(PolicyOwnerOrReadOnly), string(KindPet), string(Write), "allow")
	assert.Equal(t, 1.0, testutil.ToFloat64(deny))
	assert.Equal(t, 1.0, testutil.ToFloat64(allow))
}

func TestAuthorize_TypedNilEntityIsDeny(t *testing.T) {
	e := NewEngine()
	var nilPet *fakeEntity

	assert.NotPanics(t, func() {
		assert.Equal(t, Deny, e.Authorize(PolicyOwnerOrReadOnly, ownerActor, nilPet, Read))
		assert.Equal(t, Deny, e.Authorize(PolicyOwnerStrict, staffActor, nilPet, Write))
	})

	res, err := ResolveOwner(nilPet)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, res.Outcome)
}

func TestPermits(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.Permits(PolicyOwnerStrict, ownerActor, ownedPet, Read))
	assert.False(t, e.Permits(PolicyOwnerStrict, strangerActor, ownedPet, Read))
}
