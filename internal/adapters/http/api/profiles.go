// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/registry"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/units"
)

// ProfileDependencies defines the interface for profile operations.
type ProfileDependencies interface {
	AddProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	RemoveProfile(ctx context.Context, id string) error
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	ListProfiles(ctx context.Context) []model.Profile
}

// ProfilesHandler handles profile CRUD requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

// profileRequest mirrors the request schema for profile writes. Height
// can be given either metric or as feet and inches; the stored value is
// always centimeters.
type profileRequest struct {
	Name        string  `json:"name"`
	Age         int     `json:"age"`
	Sex         string  `json:"sex"`
	HeightCm    float64 `json:"height_cm,omitempty"`
	HeightFt    int     `json:"height_ft,omitempty"`
	HeightIn    float64 `json:"height_in,omitempty"`
	WeightMinKg float64 `json:"weight_min_kg"`
	WeightMaxKg float64 `json:"weight_max_kg"`
	HeightUnit  string  `json:"height_unit,omitempty"`
	WeightUnit  string  `json:"weight_unit,omitempty"`
}

func (p profileRequest) toModel() (model.Profile, error) {
	var sex model.Sex
	switch strings.ToLower(strings.TrimSpace(p.Sex)) {
	case "male", "m":
		sex = model.Male
	case "female", "f":
		sex = model.Female
	default:
		return model.Profile{}, errors.New("sex must be male or female")
	}

	heightCm := p.HeightCm
	if heightCm == 0 && (p.HeightFt != 0 || p.HeightIn != 0) {
		heightCm = units.FtInToCm(p.HeightFt, p.HeightIn)
	}

	out := model.Profile{
		Name:        strings.TrimSpace(p.Name),
		Age:         p.Age,
		Sex:         sex,
		HeightCm:    heightCm,
		WeightMinKg: p.WeightMinKg,
		WeightMaxKg: p.WeightMaxKg,
		Units: model.DisplayUnits{
			Height: model.HeightCm,
			Weight: model.WeightKg,
		},
	}
	if p.HeightUnit == string(model.HeightFtIn) {
		out.Units.Height = model.HeightFtIn
	}
	if p.WeightUnit == string(model.WeightLb) {
		out.Units.Weight = model.WeightLb
	}
	return out, nil
}

// profileResponse re-expresses stored metric values in the profile's
// display units alongside the canonical ones.
type profileResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Sex         string    `json:"sex"`
	HeightCm    float64   `json:"height_cm"`
	HeightFt    *int      `json:"height_ft,omitempty"`
	HeightIn    *float64  `json:"height_in,omitempty"`
	WeightMinKg float64   `json:"weight_min_kg"`
	WeightMaxKg float64   `json:"weight_max_kg"`
	WeightMinLb *float64  `json:"weight_min_lb,omitempty"`
	WeightMaxLb *float64  `json:"weight_max_lb,omitempty"`
	HeightUnit  string    `json:"height_unit"`
	WeightUnit  string    `json:"weight_unit"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProfileResponse(p model.Profile) profileResponse {
	resp := profileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Age:         p.Age,
		Sex:         string(p.Sex),
		HeightCm:    p.HeightCm,
		WeightMinKg: p.WeightMinKg,
		WeightMaxKg: p.WeightMaxKg,
		HeightUnit:  string(p.Units.Height),
		WeightUnit:  string(p.Units.Weight),
		CreatedAt:   p.CreatedAt,
	}
	if p.Units.Height == model.HeightFtIn {
		ft, in := units.CmToFtIn(p.HeightCm)
		resp.HeightFt = &ft
		resp.HeightIn = &in
	}
	if p.Units.Weight == model.WeightLb {
		minLb := units.KgToLb(p.WeightMinKg)
		maxLb := units.KgToLb(p.WeightMaxKg)
		resp.WeightMinLb = &minLb
		resp.WeightMaxLb = &maxLb
	}
	return resp
}

// HandleProfiles handles GET and POST /profiles requests.
func (h *ProfilesHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	const op = "api.profiles"
	switch r.Method {
	case http.MethodGet:
		profiles := h.deps.ListProfiles(r.Context())
		out := make([]profileResponse, len(profiles))
		for i, p := range profiles {
			out[i] = toProfileResponse(p)
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		req, ok := h.decodeProfile(w, r, op)
		if !ok {
			return
		}
		created, err := h.deps.AddProfile(r.Context(), req)
		if err != nil {
			h.writeRegistryError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProfileResponse(created))
	default:
		http.NotFound(w, r)
	}
}

// HandleProfileByID handles GET, PUT and DELETE /profiles/{id} requests.
func (h *ProfilesHandler) HandleProfileByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.profile"
	id := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.deps.GetProfile(r.Context(), id)
		if err != nil {
			h.writeRegistryError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	case http.MethodPut:
		req, ok := h.decodeProfile(w, r, op)
		if !ok {
			return
		}
		req.ID = id
		updated, err := h.deps.UpdateProfile(r.Context(), req)
		if err != nil {
			h.writeRegistryError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(updated))
	case http.MethodDelete:
		if err := h.deps.RemoveProfile(r.Context(), id); err != nil {
			h.writeRegistryError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{Status: "removed"})
	default:
		http.NotFound(w, r)
	}
}

func (h *ProfilesHandler) decodeProfile(w http.ResponseWriter, r *http.Request, op string) (model.Profile, bool) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return model.Profile{}, false
	}
	p, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return model.Profile{}, false
	}
	return p, true
}

// writeRegistryError maps registry sentinel errors to HTTP statuses.
func (h *ProfilesHandler) writeRegistryError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, registry.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, registry.ErrRegistryFull):
		writeError(w, http.StatusConflict, "registry_full", Wrap(op, err))
	case errors.Is(err, registry.ErrInvalidRange),
		errors.Is(err, registry.ErrInvalidHeight),
		errors.Is(err, registry.ErrInvalidAge),
		errors.Is(err, registry.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_profile", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
