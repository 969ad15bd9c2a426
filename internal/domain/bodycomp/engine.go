// Package bodycomp derives body composition metrics from a weight and a
// bioelectrical impedance reading using a calibrated single-frequency
// BIA model. All computations are pure, deterministic and allocation
// free so callers can recompute on every final measurement.
package bodycomp

import (
	"math"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
)

// Result carries every derived metric for one final measurement. Mass
// values are kilograms, percentages are 0-100, BMR is kcal/day.
type Result struct {
	BodyFatPct      float64 `json:"body_fat_pct"`
	WaterPct        float64 `json:"water_pct"`
	MuscleMassKg    float64 `json:"muscle_mass_kg"`
	BoneMassKg      float64 `json:"bone_mass_kg"`
	VisceralFat     float64 `json:"visceral_fat"`
	BMRKcal         int     `json:"bmr_kcal"`
	MetabolicAge    int     `json:"metabolic_age"`
	ProteinPct      float64 `json:"protein_pct"`
	LeanBodyMassKg  float64 `json:"lean_body_mass_kg"`
	BMI             float64 `json:"bmi"`
	IdealWeightKg   float64 `json:"ideal_weight_kg"`
	BodyType        string  `json:"body_type"`
	CalibrationMark string  `json:"calibration"`
}

// Compute runs the full BIA model for one measurement. The profile
// supplies sex, age and height; weight and impedance come from the
// scale. It returns ErrInvalidInput when any of the three physical
// inputs is non-positive.
func Compute(weightKg float64, impedanceOhm int, p model.Profile) (Result, error) {
	if weightKg <= 0 || impedanceOhm <= 0 || p.HeightCm <= 0 {
		return Result{}, ErrInvalidInput
	}

	cs, ok := calibration[p.Sex]
	if !ok {
		return Result{}, ErrInvalidInput
	}

	heightM := p.HeightCm / 100.0
	age := float64(p.Age)

	lbm := cs.lbmImpedance*heightM*heightM/float64(impedanceOhm) +
		cs.lbmWeight*weightKg -
		cs.lbmAge*age +
		cs.lbmOffset
	lbm = math.Max(lbm, lbmFloorRatio*weightKg)

	fatPct := (weightKg - lbm) / weightKg * 100.0
	fatPct = round1(clamp(fatPct, fatPctMin, fatPctMax))

	boneKg := lbm * cs.boneRatio
	boneKg = round1(clamp(boneKg, boneKgMin, boneKgMax))
	boneKg = math.Min(boneKg, weightKg)

	// Muscle is derived from the rounded bone mass so the two masses
	// stay consistent when displayed together.
	muscleKg := lbm - boneKg
	muscleKg = round1(math.Max(muscleKg, muscleKgMin))
	muscleKg = math.Min(muscleKg, weightKg)

	waterPct := (100.0 - fatPct) * waterFactor
	waterPct = round1(clamp(waterPct, waterPctMin, waterPctMax))

	visceral := visceralWeightCoeff*weightKg -
		visceralHeightCoeff*p.HeightCm +
		cs.visceralAgeCoeff*age +
		cs.visceralOffset
	visceral = round1(clamp(visceral, visceralMin, visceralMax))

	bmr := cs.bmrBase + bmrLBMCoeff*lbm - bmrAgeCoeff*age
	bmrKcal := int(math.Round(clamp(bmr, bmrMin, bmrMax)))

	metAge := int(math.Round(age + (fatPct-cs.idealFatPct)*metabolicSlope))
	if metAge < metabolicAgeMin {
		metAge = metabolicAgeMin
	}
	if metAge > metabolicAgeMax {
		metAge = metabolicAgeMax
	}

	proteinPct := muscleKg / weightKg * 100.0 * proteinFactor
	proteinPct = round1(clamp(proteinPct, proteinPctMin, proteinPctMax))

	heightSq := heightM * heightM
	bmi := round1(weightKg / heightSq)
	idealWeight := round1(idealBMI * heightSq)

	return Result{
		BodyFatPct:      fatPct,
		WaterPct:        waterPct,
		MuscleMassKg:    muscleKg,
		BoneMassKg:      boneKg,
		VisceralFat:     visceral,
		BMRKcal:         bmrKcal,
		MetabolicAge:    metAge,
		ProteinPct:      proteinPct,
		LeanBodyMassKg:  round1(lbm),
		BMI:             bmi,
		IdealWeightKg:   idealWeight,
		BodyType:        classify(cs, fatPct, muscleKg, weightKg),
		CalibrationMark: CalibrationVersion,
	}, nil
}

// classify buckets a measurement into the nine-way body type grid.
// Rows are fat bands (high to low), columns muscle mass bands.
func classify(cs coefficientSet, fatPct, muscleKg, weightKg float64) string {
	fatLevel := 0
	switch {
	case fatPct < cs.fatLow:
		fatLevel = 2
	case fatPct < cs.fatHigh:
		fatLevel = 1
	}

	muscleLevel := 0
	ratio := muscleKg / weightKg
	switch {
	case ratio >= cs.muscleHigh:
		muscleLevel = 2
	case ratio >= cs.muscleLow:
		muscleLevel = 1
	}

	return bodyTypes[fatLevel*3+muscleLevel]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
