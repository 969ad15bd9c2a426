// Package service provides the core ingest service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/mq/dispatch"
	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/registry"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/bodycomp"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/dedupe"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/frame"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/routing"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/session"
	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
	"github.com/lyntoo/ha-eufylife-ble/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultSessionTimeout = 30 * time.Second
	defaultDedupeDevices  = 256
	janitorDivisor        = 4 // janitor tick = timeout / divisor
)

// Record is the fully processed outcome of one final measurement.
type Record struct {
	DeviceID    string                  `json:"device_id"`
	Measurement model.FinalMeasurement  `json:"measurement"`
	Outcome     routing.Outcome         `json:"outcome"`
	Profile     *model.Profile          `json:"profile,omitempty"`
	Body        *bodycomp.Result        `json:"body,omitempty"`
	Trigger     session.FinalizeTrigger `json:"trigger"`
}

// Publisher receives processed measurement events. Implementations must
// not block; slow sinks should buffer internally.
type Publisher interface {
	PublishLive(ctx context.Context, u session.LiveUpdate)
	PublishFinal(ctx context.Context, r Record)
}

// Service wires decoding, sessions, routing and the composition engine
// behind a sharded dispatcher. Frames for one device are processed in
// order by a single shard worker.
type Service struct {
	mu sync.RWMutex

	// Core components
	profiles  registry.Store
	deduper   dedupe.Suppressor
	pool      *dispatch.Pool
	publisher Publisher

	// Per-device state. sessMu also guards latest.
	sessMu   sync.Mutex
	sessions map[string]*session.Session
	latest   map[string]Record

	// Configuration
	devices            map[string]string // device ID -> model number
	defaultModel       string
	shardCount         int
	shardCapacity      int
	maxProfiles        int
	dedupeDevices      int
	stabilityThreshold int
	stabilityEpsilonKg float64
	sessionTimeout     time.Duration
	now                func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:       make(map[string]*session.Session),
		latest:         make(map[string]Record),
		devices:        make(map[string]string),
		defaultModel:   "T9149",
		dedupeDevices:  defaultDedupeDevices,
		sessionTimeout: defaultSessionTimeout,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting scale ingest service...")

	regOpts := []registry.Option{}
	if s.maxProfiles > 0 {
		regOpts = append(regOpts, registry.WithMaxProfiles(s.maxProfiles))
	}
	if s.profiles == nil {
		s.profiles = registry.NewMemStore(regOpts...)
	}
	s.deduper = dedupe.NewInMemorySuppressor(
		dedupe.WithMaxDevices(s.dedupeDevices),
	)

	poolOpts := []dispatch.Option{}
	if s.shardCount > 0 {
		poolOpts = append(poolOpts, dispatch.WithShardCount(s.shardCount))
	}
	if s.shardCapacity > 0 {
		poolOpts = append(poolOpts, dispatch.WithShardCapacity(s.shardCapacity))
	}
	s.pool = dispatch.NewPool(frameHandler{s}, poolOpts...)
	s.pool.Start(ctx)

	go s.janitor(ctx)

	s.started = true
	s.logger.Info(ctx, "scale ingest service started",
		logger.Int("shards", s.pool.ShardCount()),
		logger.Int("devices", len(s.devices)),
		logger.String("session_timeout", s.sessionTimeout.String()),
	)

	return nil
}

// Stop gracefully shuts down the service, finalizing or abandoning any
// open sessions.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scale ingest service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.sessMu.Lock()
	for id := range s.sessions {
		s.closeSessionLocked(ctx, id)
	}
	s.sessMu.Unlock()

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "scale ingest service stopped")
}

// HandleFrame accepts a raw frame for asynchronous processing.
// Returns false when the device's shard queue is saturated and the
// frame was dropped.
func (s *Service) HandleFrame(ctx context.Context, deviceID string, data []byte) bool {
	metrics.RecordFrameReceived(deviceID)

	f := model.RawFrame{
		DeviceID:   deviceID,
		Data:       data,
		ReceivedAt: s.now(),
	}
	return s.pool.Dispatch(ctx, f)
}

// Disconnect signals that a device dropped its connection. An open
// session with enough stable readings finalizes from its last weight;
// otherwise it is abandoned.
func (s *Service) Disconnect(ctx context.Context, deviceID string) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	s.closeSessionLocked(ctx, deviceID)
	s.deduper.Forget(ctx, deviceID)
}

// frameHandler adapts the Service to the dispatcher's Handler interface.
type frameHandler struct {
	svc *Service
}

func (h frameHandler) Handle(ctx context.Context, f dispatch.Frame) error {
	return h.svc.processFrame(ctx, f)
}

func (s *Service) processFrame(ctx context.Context, f model.RawFrame) error {
	cap, err := s.capabilityFor(f.DeviceID)
	if err != nil {
		metrics.RecordDecodeError("unknown_model")
		return err
	}

	// Broadcast scales rebroadcast each packet many times per second;
	// connected scales never repeat payloads, and their steady-weight
	// frames must keep feeding the stability counter.
	if cap == frame.CapAdvertisement && s.deduper.SeenAndRecord(ctx, f.DeviceID, f.Data) {
		metrics.RecordFrameDuplicate()
		return nil
	}

	reading, err := frame.Decode(cap, f.Data)
	if err != nil {
		metrics.RecordDecodeError(decodeReason(err))
		s.logger.Debug(ctx, "frame rejected",
			logger.String("device", f.DeviceID),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordFrameDecoded(reading.Kind.String())

	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess, exists := s.sessions[f.DeviceID]
	if !exists {
		sess = session.New(f.DeviceID,
			session.WithEpsilon(s.stabilityEpsilonKg),
			session.WithStabilityThreshold(s.stabilityThreshold),
			session.WithClock(s.now),
		)
		s.sessions[f.DeviceID] = sess
		metrics.RecordSessionStarted()
		metrics.UpdateActiveSessions(len(s.sessions))
	}

	live, final := sess.Observe(reading)
	if live != nil {
		metrics.RecordLiveUpdate()
		if s.publisher != nil {
			s.publisher.PublishLive(ctx, *live)
		}
	}
	if final != nil {
		s.finalizeLocked(ctx, f.DeviceID, *final, session.TriggerFrame)
	}
	return nil
}

// finalizeLocked routes and enriches a final measurement, then drops the
// session. Must be called with sessMu held.
func (s *Service) finalizeLocked(ctx context.Context, deviceID string, m model.FinalMeasurement, trigger session.FinalizeTrigger) {
	profile, outcome := routing.Route(m.WeightKg, s.profiles.List(ctx))
	metrics.RecordRoutingOutcome(outcome.String())

	rec := Record{
		DeviceID:    deviceID,
		Measurement: m,
		Outcome:     outcome,
		Profile:     profile,
		Trigger:     trigger,
	}

	if profile != nil && m.ImpedanceOhm != nil {
		body, err := bodycomp.Compute(m.WeightKg, *m.ImpedanceOhm, *profile)
		if err != nil {
			metrics.RecordBodyCompError()
			s.logger.Warn(ctx, "body composition failed",
				logger.String("device", deviceID),
				logger.String("profile", profile.ID),
				logger.Error(err),
			)
		} else {
			metrics.RecordBodyCompComputed()
			rec.Body = &body
		}
	}

	s.latest[deviceID] = rec
	delete(s.sessions, deviceID)
	metrics.RecordSessionFinalized(trigger.String())
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Info(ctx, "measurement finalized",
		logger.String("device", deviceID),
		logger.Float64("weight_kg", m.WeightKg),
		logger.String("outcome", outcome.String()),
		logger.String("trigger", trigger.String()),
	)

	if s.publisher != nil {
		s.publisher.PublishFinal(ctx, rec)
	}
}

// closeSessionLocked finalizes or abandons the session for deviceID.
// Must be called with sessMu held.
func (s *Service) closeSessionLocked(ctx context.Context, deviceID string) {
	sess, exists := s.sessions[deviceID]
	if !exists {
		return
	}

	if m := sess.Close(); m != nil {
		s.finalizeLocked(ctx, deviceID, *m, session.TriggerFallback)
		return
	}

	delete(s.sessions, deviceID)
	metrics.RecordSessionAbandoned()
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session abandoned", logger.String("device", deviceID))
}

// janitor sweeps idle sessions so a walked-away user still gets a
// fallback measurement.
func (s *Service) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.sessionTimeout / janitorDivisor)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepIdle(ctx)
		}
	}
}

func (s *Service) sweepIdle(ctx context.Context) {
	now := s.now()

	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	for id, sess := range s.sessions {
		if now.Sub(sess.IdleSince()) >= s.sessionTimeout {
			s.closeSessionLocked(ctx, id)
			s.deduper.Forget(ctx, id)
		}
	}
}

// Latest returns the most recent processed measurement for a device.
func (s *Service) Latest(ctx context.Context, deviceID string) (Record, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	rec, exists := s.latest[deviceID]
	if !exists {
		return Record{}, ErrNoMeasurement
	}
	return rec, nil
}

// AddProfile validates and stores a new profile.
func (s *Service) AddProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	out, err := s.profiles.Add(ctx, p)
	if err == nil {
		metrics.UpdateProfileCount(s.profiles.Count(ctx))
	}
	return out, err
}

// UpdateProfile replaces an existing profile wholesale.
func (s *Service) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	return s.profiles.Update(ctx, p)
}

// RemoveProfile deletes a profile.
func (s *Service) RemoveProfile(ctx context.Context, id string) error {
	err := s.profiles.Remove(ctx, id)
	if err == nil {
		metrics.UpdateProfileCount(s.profiles.Count(ctx))
	}
	return err
}

// GetProfile returns a single profile by ID.
func (s *Service) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	return s.profiles.Get(ctx, id)
}

// ListProfiles returns all profiles in insertion order.
func (s *Service) ListProfiles(ctx context.Context) []model.Profile {
	return s.profiles.List(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"session_timeout": s.sessionTimeout.String(),
		"devices":         len(s.devices),
	}

	if s.started {
		s.sessMu.Lock()
		active := len(s.sessions)
		measured := len(s.latest)
		s.sessMu.Unlock()

		stats["shards"] = s.pool.ShardCount()
		stats["queued_frames"] = s.pool.Len(ctx)
		stats["active_sessions"] = active
		stats["measured_devices"] = measured
		stats["profiles"] = s.profiles.Count(ctx)
		stats["deduped_devices"] = s.deduper.Size()
	}

	return stats
}

func (s *Service) capabilityFor(deviceID string) (frame.Capability, error) {
	modelNumber, exists := s.devices[deviceID]
	if !exists {
		modelNumber = s.defaultModel
	}
	return frame.CapabilityForModel(modelNumber)
}

func decodeReason(err error) string {
	switch {
	case errors.Is(err, frame.ErrFrameTooShort):
		return "too_short"
	case errors.Is(err, frame.ErrBadHeader):
		return "bad_header"
	case errors.Is(err, frame.ErrUnknownModel):
		return "unknown_model"
	default:
		return "other"
	}
}
