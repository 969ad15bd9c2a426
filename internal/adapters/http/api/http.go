// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/lyntoo/ha-eufylife-ble/internal/app"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// HandleFrame submits a raw frame for async processing.
	// Returns false on backpressure.
	HandleFrame(ctx context.Context, deviceID string, data []byte) bool

	// Disconnect closes the open session for a device, if any.
	Disconnect(ctx context.Context, deviceID string)

	// Latest returns the most recent processed measurement for a device.
	Latest(ctx context.Context, deviceID string) (service.Record, error)

	// Profile registry operations.
	AddProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	RemoveProfile(ctx context.Context, id string) error
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	ListProfiles(ctx context.Context) []model.Profile
}

// Server wires HTTP routes for the ingest API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	framesHandler       *FramesHandler
	profilesHandler     *ProfilesHandler
	measurementsHandler *MeasurementsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		framesHandler:       NewFramesHandler(deps),
		profilesHandler:     NewProfilesHandler(deps),
		measurementsHandler: NewMeasurementsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/frames", MetricsMiddleware(s.framesHandler.HandlePostFrame, "frames"))
	mux.HandleFunc("/disconnect", MetricsMiddleware(s.framesHandler.HandlePostDisconnect, "disconnect"))
	mux.HandleFunc("/profiles", MetricsMiddleware(s.profilesHandler.HandleProfiles, "profiles"))
	mux.HandleFunc("/profiles/", MetricsMiddleware(s.profilesHandler.HandleProfileByID, "profile"))
	mux.HandleFunc("/devices/", MetricsMiddleware(s.measurementsHandler.HandleGetLatest, "latest"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
