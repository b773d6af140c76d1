package utils

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecToScaledIntRoundTrip(t *testing.T) {
	amount := sdkmath.LegacyMustNewDecFromStr("12.345678901234567890")

	scaled, err := DecToScaledInt(amount, 18)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567890", scaled.String())

	back, err := ScaledIntToDec(scaled.String(), 18)
	require.NoError(t, err)
	assert.Equal(t, amount.String(), back.String())
}

func TestDecToScaledIntRejectsNegative(t *testing.T) {
	_, err := DecToScaledInt(sdkmath.LegacyMustNewDecFromStr("-1"), 18)
	assert.ErrorIs(t, err, ErrAmountNegative)
}

func TestDecToScaledIntRejectsBadExponent(t *testing.T) {
	_, err := DecToScaledInt(sdkmath.LegacyOneDec(), 19)
	assert.ErrorIs(t, err, ErrInvalidExponent)
}

func TestScaledIntToDecRejectsGarbage(t *testing.T) {
	_, err := ScaledIntToDec("not-a-number", 18)
	assert.ErrorIs(t, err, ErrConversionFailed)
}

func TestDecToFloat64(t *testing.T) {
	got, err := DecToFloat64(sdkmath.LegacyMustNewDecFromStr("1234.5"))
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, got, 1e-9)

	_, err = DecToFloat64(sdkmath.LegacyDec{})
	assert.ErrorIs(t, err, ErrAmountNil)
}
