package model

import "time"

// Sex selects the coefficient set used by the body composition engine.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// HeightUnit is a display preference for height values.
type HeightUnit string

const (
	HeightCm   HeightUnit = "cm"
	HeightFtIn HeightUnit = "ft_in"
)

// WeightUnit is a display preference for weight values.
type WeightUnit string

const (
	WeightKg WeightUnit = "kg"
	WeightLb WeightUnit = "lbs"
)

// DisplayUnits holds a profile's preferred units. Stored values are
// always metric; these only affect how the registry re-expresses them.
type DisplayUnits struct {
	Height HeightUnit
	Weight WeightUnit
}

// Profile is one registered user of a scale. Weight range bounds are
// inclusive and kept in kilograms regardless of display units.
type Profile struct {
	ID          string
	Name        string
	Age         int
	Sex         Sex
	HeightCm    float64
	WeightMinKg float64
	WeightMaxKg float64
	Units       DisplayUnits
	CreatedAt   time.Time
}

// RangeWidthKg returns the width of the profile's weight range.
func (p Profile) RangeWidthKg() float64 {
	return p.WeightMaxKg - p.WeightMinKg
}

// ContainsWeight reports whether a weight falls inside the profile's
// inclusive weight range.
func (p Profile) ContainsWeight(weightKg float64) bool {
	return weightKg >= p.WeightMinKg && weightKg <= p.WeightMaxKg
}
