package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/domain"
)

func TestShippingDetails(t *testing.T) {
	v := New()

	ok := domain.ShippingDetails{
		FullName:     "Ann Lee",
		Email:        "ann@example.com",
		AddressLine1: "1 Rue de la Paix",
		City:         "Paris",
		PostalCode:   "75002",
		Country:      "France",
	}
	require.NoError(t, Struct(v, ok))

	bad := ok
	bad.FullName = "A"
	bad.Email = "nope"
	bad.PostalCode = "75_002!"
	err := Struct(v, bad)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "must be at least 2 characters", verr.Fields["fullName"])
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Contains(t, verr.Fields, "postalCode")
}

func TestPostcodeRule(t *testing.T) {
	v := New()
	for _, code := range []string{"75002", "SW1A 1AA", "12-345", "abc"} {
		assert.NoError(t, v.Var(code, "postcode"), code)
	}
	for _, code := range []string{"12", "12345678901", "75#02", ""} {
		assert.Error(t, v.Var(code, "postcode"), code)
	}
}
