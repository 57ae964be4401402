package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Validation(map[string]string{"weight": "must be greater than zero"})

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrIntegrity))

	wrapped := fmt.Errorf("create pet: %w", err)
	assert.True(t, errors.Is(wrapped, ErrValidation))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation(nil)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Integrity("administered_date", "duplicated")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden()))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(NotFound("pet not found")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("vaccine in use")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestFieldErrors(t *testing.T) {
	fields, ok := FieldErrors(Integrity("administered_date", "duplicated"))
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"administered_date": "duplicated"}, fields)

	_, ok = FieldErrors(Forbidden())
	assert.False(t, ok)
}

func TestError_MessageIsStable(t *testing.T) {
	err := Validation(map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "validation failed (a: one; b: two)", err.Error())
}

func TestProgrammingError(t *testing.T) {
	err := fmt.Errorf("resolve: %w", Programming("unknown entity kind %q", "invoice"))
	assert.True(t, IsProgramming(err))
	assert.False(t, IsProgramming(Forbidden()))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestPublic_HidesExistence(t *testing.T) {
	status, body := Public(NotFound("pet p-123 not found"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, ErrForbidden, body)

	status, body = Public(fmt.Errorf("load: %w", Forbidden()))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body.Message)

	status, body = Public(errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body.Message)

	status, body = Public(Validation(map[string]string{"weight": "must be greater than 0"}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "must be greater than 0", body.Fields["weight"])
}
