package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tunisia() *Normalizer { return NewNormalizer("216", 8) }

func TestNormalize_LocalWithTrunkZero(t *testing.T) {
	got, err := tunisia().Normalize("099123456")
	require.NoError(t, err)
	assert.Equal(t, "+21699123456", got)
}

func TestNormalize_BareLocal(t *testing.T) {
	got, err := tunisia().Normalize("99123456")
	require.NoError(t, err)
	assert.Equal(t, "+21699123456", got)
}

func TestNormalize_CountryCodeWithoutPlus(t *testing.T) {
	got, err := tunisia().Normalize("21699123456")
	require.NoError(t, err)
	assert.Equal(t, "+21699123456", got)
}

func TestNormalize_AlreadyCanonical_Idempotent(t *testing.T) {
	n := tunisia()
	first, err := n.Normalize("+21699123456")
	require.NoError(t, err)
	second, err := n.Normalize(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize_StripsPunctuation(t *testing.T) {
	got, err := tunisia().Normalize(" (99) 123-45.6 ")
	require.NoError(t, err)
	assert.Equal(t, "+21699123456", got)
}

func TestNormalize_LocalNumberStartingWithCountryDigits(t *testing.T) {
	// "21612345" is 8 digits — a valid local number, not a truncated +216 form.
	got, err := tunisia().Normalize("21612345")
	require.NoError(t, err)
	assert.Equal(t, "+21621612345", got)
}

func TestNormalize_ForeignCountryCode_Rejected(t *testing.T) {
	_, err := tunisia().Normalize("+33612345678")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNormalize_WrongLength_Rejected(t *testing.T) {
	for _, raw := range []string{"1234567", "123456789", "216991234567", "+2169912345"} {
		_, err := tunisia().Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", raw)
	}
}

func TestNormalize_NonNumericGarbage_Rejected(t *testing.T) {
	for _, raw := range []string{"", "  ", "abcdefgh", "9912345a"} {
		_, err := tunisia().Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", raw)
	}
}
