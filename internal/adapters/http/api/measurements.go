// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/lyntoo/ha-eufylife-ble/internal/app"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/units"
)

// MeasurementDependencies defines the interface for measurement reads.
type MeasurementDependencies interface {
	Latest(ctx context.Context, deviceID string) (service.Record, error)
}

// MeasurementsHandler handles measurement read requests.
type MeasurementsHandler struct {
	deps MeasurementDependencies
}

// NewMeasurementsHandler creates a new measurements handler.
func NewMeasurementsHandler(deps MeasurementDependencies) *MeasurementsHandler {
	return &MeasurementsHandler{deps: deps}
}

// latestResponse is the read shape for GET /devices/{id}/latest.
type latestResponse struct {
	DeviceID     string           `json:"device_id"`
	WeightKg     float64          `json:"weight_kg"`
	WeightLb     *float64         `json:"weight_lb,omitempty"`
	ImpedanceOhm *int             `json:"impedance_ohm,omitempty"`
	HeartRateBPM *int             `json:"heart_rate_bpm,omitempty"`
	Timestamp    string           `json:"timestamp"`
	Outcome      string           `json:"outcome"`
	Trigger      string           `json:"trigger"`
	ProfileID    string           `json:"profile_id,omitempty"`
	ProfileName  string           `json:"profile_name,omitempty"`
	BodyMetrics  *bodyCompPayload `json:"body,omitempty"`
}

type bodyCompPayload struct {
	BodyFatPct     float64 `json:"body_fat_pct"`
	WaterPct       float64 `json:"water_pct"`
	MuscleMassKg   float64 `json:"muscle_mass_kg"`
	BoneMassKg     float64 `json:"bone_mass_kg"`
	VisceralFat    float64 `json:"visceral_fat"`
	BMRKcal        int     `json:"bmr_kcal"`
	MetabolicAge   int     `json:"metabolic_age"`
	ProteinPct     float64 `json:"protein_pct"`
	LeanBodyMassKg float64 `json:"lean_body_mass_kg"`
	BMI            float64 `json:"bmi"`
	IdealWeightKg  float64 `json:"ideal_weight_kg"`
	BodyType       string  `json:"body_type"`
}

// HandleGetLatest handles GET /devices/{id}/latest requests.
func (h *MeasurementsHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_latest"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/devices/")
	deviceID, suffix, found := strings.Cut(rest, "/")
	if !found || suffix != "latest" || deviceID == "" {
		http.NotFound(w, r)
		return
	}

	rec, err := h.deps.Latest(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, service.ErrNoMeasurement) {
			writeError(w, http.StatusNotFound, "no_measurement", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, toLatestResponse(rec))
}

func toLatestResponse(rec service.Record) latestResponse {
	resp := latestResponse{
		DeviceID:     rec.DeviceID,
		WeightKg:     rec.Measurement.WeightKg,
		ImpedanceOhm: rec.Measurement.ImpedanceOhm,
		HeartRateBPM: rec.Measurement.HeartRateBPM,
		Timestamp:    rec.Measurement.Timestamp.UTC().Format(time.RFC3339),
		Outcome:      rec.Outcome.String(),
		Trigger:      rec.Trigger.String(),
	}
	if rec.Profile != nil {
		resp.ProfileID = rec.Profile.ID
		resp.ProfileName = rec.Profile.Name
		if rec.Profile.Units.Weight == model.WeightLb {
			lb := units.KgToLb(rec.Measurement.WeightKg)
			resp.WeightLb = &lb
		}
	}
	if rec.Body != nil {
		resp.BodyMetrics = &bodyCompPayload{
			BodyFatPct:     rec.Body.BodyFatPct,
			WaterPct:       rec.Body.WaterPct,
			MuscleMassKg:   rec.Body.MuscleMassKg,
			BoneMassKg:     rec.Body.BoneMassKg,
			VisceralFat:    rec.Body.VisceralFat,
			BMRKcal:        rec.Body.BMRKcal,
			MetabolicAge:   rec.Body.MetabolicAge,
			ProteinPct:     rec.Body.ProteinPct,
			LeanBodyMassKg: rec.Body.LeanBodyMassKg,
			BMI:            rec.Body.BMI,
			IdealWeightKg:  rec.Body.IdealWeightKg,
			BodyType:       rec.Body.BodyType,
		}
	}
	return resp
}
