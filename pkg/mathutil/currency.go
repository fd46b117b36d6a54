// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/lead-intake/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for display and for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsNegative checks if a value is negative (less than negative tolerance)
func IsNegative(val float64) bool {
	return val < -constants.CurrencyTolerance
}

// FloorAtZero clamps negative values to zero. NaN passes through unchanged,
// as does a negative zero which becomes positive zero.
func FloorAtZero(val float64) float64 {
	return math.Max(0, val)
}
