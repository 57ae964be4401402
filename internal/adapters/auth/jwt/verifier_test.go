package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-vaccination-schedule/internal/ports/auth"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T, issuer string) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Secret: "s3cret", Issuer: issuer, Now: func() time.Time { return testNow }})
	require.NoError(t, err)
	return v
}

func TestSignAndVerify(t *testing.T) {
	v := newTestVerifier(t, "petvax")

	tok, err := v.Sign(auth.Claims{UserID: "user-1", Email: "a@b.com", IsStaff: true}, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-1", Email: "a@b.com", IsStaff: true}, claims)
}

func TestVerify_Expired(t *testing.T) {
	v := newTestVerifier(t, "")

	tok, err := v.Sign(auth.Claims{UserID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecretOrIssuer(t *testing.T) {
	v := newTestVerifier(t, "petvax")

	other, err := NewVerifier(Config{Secret: "other", Issuer: "petvax", Now: func() time.Time { return testNow }})
	require.NoError(t, err)
	tok, err := other.Sign(auth.Claims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	foreign := newTestVerifier(t, "someone-else")
	tok, err = foreign.Sign(auth.Claims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	v := newTestVerifier(t, "")

	claims := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_MissingSubject(t *testing.T) {
	v := newTestVerifier(t, "")

	tok, err := v.Sign(auth.Claims{}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier(Config{Secret: " "})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
