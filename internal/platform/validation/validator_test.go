package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/validation"
)

type profile struct {
	Name   string   `json:"name" validate:"notblank,max=10"`
	Email  string   `json:"email" validate:"required,email"`
	Phone  string   `json:"phone,omitempty" validate:"omitempty,phone"`
	Weight *float64 `json:"weight" validate:"omitempty,gt=0"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()

	w := 4.5
	fields := v.Fields(profile{Name: "Ana", Email: "ana@example.com", Phone: "+5511999998888", Weight: &w})
	assert.Empty(t, fields)
	assert.NoError(t, v.Validate(profile{Name: "Ana", Email: "ana@example.com"}))
}

func TestValidator_FieldMessages(t *testing.T) {
	v := validation.New()

	zero := 0.0
	fields := v.Fields(profile{
		Name:   "   ",
		Email:  "not-an-email",
		Phone:  "12-34",
		Weight: &zero,
	})

	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Contains(t, fields["phone"], "+999999999")
	assert.Equal(t, "must be greater than 0", fields["weight"])
}

func TestValidator_ValidateReturnsDomainError(t *testing.T) {
	v := validation.New()

	err := v.Validate(profile{Name: "a very long name", Email: "x@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	fields, ok := apperr.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "must not exceed 10 characters", fields["name"])
}
