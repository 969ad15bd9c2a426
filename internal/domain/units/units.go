// Package units converts between the internal metric representation and
// display units. All functions are pure; callers must always convert
// from the stored metric value rather than chaining conversions, so
// display rounding never accumulates.
package units

import "math"

// Conversion constants.
const (
	KgPerLb  = 1.0 / 2.20462
	LbPerKg  = 2.20462
	CmPerIn  = 2.54
	CmPerFt  = 30.48
	inPerFt  = 12
)

// CmToFtIn converts centimetres to whole feet plus fractional inches.
// Feet round down; inches keep one decimal.
func CmToFtIn(cm float64) (feet int, inches float64) {
	totalInches := cm / CmPerIn
	feet = int(totalInches / inPerFt)
	inches = roundTo(math.Mod(totalInches, inPerFt), 1)
	return feet, inches
}

// FtInToCm converts feet plus inches to centimetres at 0.1 cm precision.
func FtInToCm(feet int, inches float64) float64 {
	return roundTo(float64(feet)*CmPerFt+inches*CmPerIn, 1)
}

// KgToLb converts kilograms to pounds without rounding. Rounding is a
// display concern and must never happen before the formula engine.
func KgToLb(kg float64) float64 {
	return kg * LbPerKg
}

// LbToKg converts pounds to kilograms without rounding.
func LbToKg(lb float64) float64 {
	return lb * KgPerLb
}

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}
