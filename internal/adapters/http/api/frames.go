// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// FrameDependencies defines the interface for frame ingestion.
type FrameDependencies interface {
	HandleFrame(ctx context.Context, deviceID string, data []byte) bool
	Disconnect(ctx context.Context, deviceID string)
}

// FramesHandler handles frame ingestion requests.
type FramesHandler struct {
	deps FrameDependencies
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps FrameDependencies) *FramesHandler {
	return &FramesHandler{deps: deps}
}

// frameRequest mirrors the request schema for POST /frames. The payload
// is the raw frame bytes hex encoded.
type frameRequest struct {
	DeviceID string `json:"device_id"`
	Payload  string `json:"payload"`
}

func (f frameRequest) validate() error {
	switch {
	case strings.TrimSpace(f.DeviceID) == "":
		return errors.New("missing device_id")
	case strings.TrimSpace(f.Payload) == "":
		return errors.New("missing payload")
	}
	if _, err := hex.DecodeString(f.Payload); err != nil {
		return errors.New("invalid payload; must be hex")
	}
	return nil
}

// disconnectRequest mirrors the request schema for POST /disconnect.
type disconnectRequest struct {
	DeviceID string `json:"device_id"`
}

// HandlePostFrame handles POST /frames requests.
func (h *FramesHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	payload, _ := hex.DecodeString(req.Payload)
	if ok := h.deps.HandleFrame(r.Context(), req.DeviceID, payload); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandlePostDisconnect handles POST /disconnect requests.
func (h *FramesHandler) HandlePostDisconnect(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_disconnect"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req disconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing device_id")))
		return
	}

	h.deps.Disconnect(r.Context(), req.DeviceID)
	writeJSON(w, http.StatusOK, ackResponse{Status: "disconnected"})
}
