package bodycomp

import "github.com/lyntoo/ha-eufylife-ble/internal/domain/model"

// CalibrationVersion identifies the coefficient table below. Bump it
// whenever any constant changes so regressions show up in fixtures.
const CalibrationVersion = "v1"

// Constants shared by both sexes. Calibrated against the EufyLife app.
const (
	lbmFloorRatio  = 0.25   // LBM never below a quarter of body weight
	waterFactor    = 0.7126 // water %% as a fraction of non-fat mass
	proteinFactor  = 0.189  // protein %% from the muscle/weight ratio
	metabolicSlope = 0.88   // years of metabolic age per %% of excess fat
	idealBMI       = 22.0

	visceralWeightCoeff = 0.3
	visceralHeightCoeff = 0.09

	bmrLBMCoeff = 21.6 // Katch-McArdle style, LBM-based
	bmrAgeCoeff = 1.5

	// Calibrated output bands. All inside the hard [0,100] / [0,weight]
	// bounds enforced by the engine.
	fatPctMin, fatPctMax         = 3.0, 60.0
	boneKgMin, boneKgMax         = 0.5, 8.0
	muscleKgMin                  = 10.0
	waterPctMin, waterPctMax     = 35.0, 75.0
	visceralMin, visceralMax     = 1.0, 50.0
	bmrMin, bmrMax               = 500.0, 3000.0
	metabolicAgeMin              = 15
	metabolicAgeMax              = 90
	proteinPctMin, proteinPctMax = 5.0, 25.0
)

// coefficientSet holds the sex-specific constants of the calibration.
type coefficientSet struct {
	// Lean body mass: A*h_m^2/Z + B*W - C*age + D.
	lbmImpedance float64
	lbmWeight    float64
	lbmAge       float64
	lbmOffset    float64

	boneRatio float64 // bone mass as a fraction of LBM

	visceralAgeCoeff float64
	visceralOffset   float64

	bmrBase float64

	idealFatPct float64 // reference for metabolic age

	// Body type classification bands.
	fatLow, fatHigh       float64 // body fat %% thresholds
	muscleLow, muscleHigh float64 // muscle mass as a fraction of weight
}

// calibration is the single versioned coefficient table. Recalibration
// only ever touches these numbers, never control flow.
var calibration = map[model.Sex]coefficientSet{
	model.Male: {
		lbmImpedance:     45.0,
		lbmWeight:        0.40,
		lbmAge:           0.05,
		lbmOffset:        27.0,
		boneRatio:        0.049,
		visceralAgeCoeff: 0.10,
		visceralOffset:   1.0,
		bmrBase:          360.0,
		idealFatPct:      20.0,
		fatLow:           15.0,
		fatHigh:          25.0,
		muscleLow:        0.40,
		muscleHigh:       0.48,
	},
	model.Female: {
		lbmImpedance:     55.0,
		lbmWeight:        0.35,
		lbmAge:           0.05,
		lbmOffset:        20.0,
		boneRatio:        0.048,
		visceralAgeCoeff: 0.08,
		visceralOffset:   -1.0,
		bmrBase:          340.0,
		idealFatPct:      25.0,
		fatLow:           22.0,
		fatHigh:          32.0,
		muscleLow:        0.33,
		muscleHigh:       0.40,
	},
}

// bodyTypes indexes the nine-way classification as fatLevel*3+muscleLevel.
var bodyTypes = [9]string{
	"Obese",
	"Overweight",
	"Thick-set",
	"Lack-exercise",
	"Balanced",
	"Balanced-muscular",
	"Skinny",
	"Balanced-skinny",
	"Skinny-muscular",
}
