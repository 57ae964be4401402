package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/ports/auth"
)

type fakeVerifier struct {
	claims auth.Claims
	err    error
	got    string
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	f.got = token
	return f.claims, f.err
}

// serve ejecuta AuthContext y devuelve el actor que vio el handler.
func serve(t *testing.T, v auth.AuthVerifier, headers map[string]string) (access.Actor, bool) {
	t.Helper()

	var (
		actor access.Actor
		ok    bool
	)
	h := AuthContext(v, nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		actor, ok = GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return actor, ok
}

func TestAuthContext_DevHeaders(t *testing.T) {
	actor, ok := serve(t, nil, map[string]string{HeaderDebugUserID: " user-1 ", HeaderDebugStaff: "true"})
	assert.True(t, ok)
	assert.Equal(t, access.Actor{UserID: "user-1", Privileged: true}, actor)

	_, ok = serve(t, nil, nil)
	assert.False(t, ok)
}

func TestAuthContext_Bearer(t *testing.T) {
	v := &fakeVerifier{claims: auth.Claims{UserID: "user-2"}}

	actor, ok := serve(t, v, map[string]string{"Authorization": "bearer abc.def"})
	assert.True(t, ok)
	assert.Equal(t, "abc.def", v.got)
	assert.Equal(t, access.Actor{UserID: "user-2"}, actor)
}

func TestAuthContext_VerifierIgnoresDevHeaders(t *testing.T) {
	v := &fakeVerifier{claims: auth.Claims{UserID: "user-2"}}

	_, ok := serve(t, v, map[string]string{HeaderDebugUserID: "user-1"})
	assert.False(t, ok)
	assert.Empty(t, v.got)
}

func TestAuthContext_RejectedTokenHasNoActor(t *testing.T) {
	v := &fakeVerifier{err: errors.New("expired")}

	_, ok := serve(t, v, map[string]string{"Authorization": "Bearer abc"})
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "x", bearerToken("Bearer x"))
	assert.Equal(t, "", bearerToken("Basic x"))
	assert.Equal(t, "", bearerToken("Bearer"))
}
