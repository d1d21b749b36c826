package identity

import (
	"errors"
	"testing"

	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Phone(t *testing.T) {
	kind, norm, err := Classify("+919876543210")
	require.NoError(t, err)
	assert.Equal(t, KindPhone, kind)
	assert.Equal(t, "+919876543210", norm)
}

func TestClassify_PhoneNoPlus(t *testing.T) {
	kind, _, err := Classify("9876543210")
	require.NoError(t, err)
	assert.Equal(t, KindPhone, kind)
}

func TestClassify_EmailNormalized(t *testing.T) {
	kind, norm, err := Classify("  Seller@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, KindEmail, kind)
	assert.Equal(t, "seller@example.com", norm)
}

func TestClassify_Invalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "12345", "+12 345 678", "no-at-sign.com", "a@b"} {
		_, _, err := Classify(raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, errors.Is(err, domain.ErrInvalidIdentity), "input %q", raw)
	}
}
