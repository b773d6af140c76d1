/*
This file contains common utility functions for converting between decimal
vote amounts, integer on-chain weights, and floats for storage.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidExponent  = errors.New("scale exponent is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// PowerOfTen returns 10^exp as a decimal for scaling vote amounts to the
// integer weight units the voter contract expects.
func PowerOfTen(exp int) (sdkmath.LegacyDec, error) {
	if exp < 0 || exp > 18 {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidExponent, exp)
	}
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < exp; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}
	return factor, nil
}

// DecToScaledInt converts a decimal amount to an integer scaled by 10^exp,
// truncating toward zero.
func DecToScaledInt(amount sdkmath.LegacyDec, exp int) (sdkmath.Int, error) {
	if amount.IsNil() {
		return sdkmath.ZeroInt(), ErrAmountNil
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	factor, err := PowerOfTen(exp)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return amount.Mul(factor).TruncateInt(), nil
}

// ScaledIntToDec parses an integer weight string (as returned by chain
// APIs) back into a decimal amount at 10^exp scale.
func ScaledIntToDec(raw string, exp int) (sdkmath.LegacyDec, error) {
	parsed, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %q is not an integer", ErrConversionFailed, raw)
	}
	if parsed.IsNegative() {
		return sdkmath.LegacyDec{}, ErrAmountNegative
	}
	factor, err := PowerOfTen(exp)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return sdkmath.LegacyNewDecFromInt(parsed).Quo(factor), nil
}

// DecToFloat64 converts a decimal to float64 for storage columns and
// dashboard aggregates. Returns an error on nil or non-finite values.
func DecToFloat64(amount sdkmath.LegacyDec) (float64, error) {
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	result, err := amount.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}
	return result, nil
}
