// Package session implements the per-device measurement state machine.
//
// A session starts with the first reading after a device connects and
// is terminal once it produced its single FinalMeasurement. Readings
// for one device arrive in order and are observed by one worker at a
// time; the session itself does no locking.
package session

import (
	"math"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
)

// Defaults for the stabilization window.
const (
	defaultEpsilonKg          = 0.05
	defaultStabilityThreshold = 5
)

// FinalizeTrigger records what produced the final measurement.
type FinalizeTrigger int

const (
	// TriggerFrame means the device sent an explicit final frame.
	TriggerFrame FinalizeTrigger = iota
	// TriggerFallback means the measurement was synthesized from a
	// stable reading when the session ended without a final frame.
	TriggerFallback
)

// MarshalJSON serializes the trigger as its label.
func (t FinalizeTrigger) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// String returns the trigger label used in logs and metrics.
func (t FinalizeTrigger) String() string {
	if t == TriggerFallback {
		return "fallback"
	}
	return "frame"
}

// LiveUpdate is the real-time weight event handed to the UI collaborator.
type LiveUpdate struct {
	DeviceID string
	WeightKg float64
	IsStable bool
}

// Session holds the transient per-connection state for one device.
type Session struct {
	deviceID  string
	last      *model.DecodedReading
	lastSeen  time.Time
	stability int
	finalized bool

	// Latest impedance and heart rate seen in any reading this
	// session. Final frames on some models omit them, so the last
	// observed values carry over into the final measurement.
	lastImpedance *int
	lastHeartRate *int

	epsilonKg float64
	threshold int
	now       func() time.Time
}

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithEpsilon sets the weight deviation (kg) that resets the
// stability counter.
func WithEpsilon(kg float64) Option {
	return func(s *Session) {
		if kg > 0 {
			s.epsilonKg = kg
		}
	}
}

// WithStabilityThreshold sets how many consecutive readings within
// epsilon are required before a fallback measurement may be synthesized.
func WithStabilityThreshold(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session in the Collecting state.
func New(deviceID string, opts ...Option) *Session {
	s := &Session{
		deviceID:  deviceID,
		epsilonKg: defaultEpsilonKg,
		threshold: defaultStabilityThreshold,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.lastSeen = s.now()
	return s
}

// DeviceID returns the device this session belongs to.
func (s *Session) DeviceID() string { return s.deviceID }

// Finalized reports whether the session is terminal. A finalized
// session ignores further readings; the caller starts a new session
// for the next on-scale event.
func (s *Session) Finalized() bool { return s.finalized }

// IdleSince returns the receipt time of the last observed reading.
func (s *Session) IdleSince() time.Time { return s.lastSeen }

// Observe consumes one decoded reading and returns the events it
// produces: at most one live update, or the session's single final
// measurement. A final frame never also emits a live update.
func (s *Session) Observe(r model.DecodedReading) (*LiveUpdate, *model.FinalMeasurement) {
	if s.finalized {
		return nil, nil
	}
	s.lastSeen = s.now()

	if r.ImpedanceOhm != nil {
		s.lastImpedance = r.ImpedanceOhm
	}
	if r.HeartRateBPM != nil {
		s.lastHeartRate = r.HeartRateBPM
	}

	if r.Kind == model.Final {
		s.finalized = true
		return nil, s.measurement(r.WeightKg)
	}

	if s.last != nil {
		if math.Abs(r.WeightKg-s.last.WeightKg) > s.epsilonKg {
			s.stability = 0
		} else {
			s.stability++
		}
	}
	reading := r
	s.last = &reading

	return &LiveUpdate{
		DeviceID: s.deviceID,
		WeightKg: r.WeightKg,
		IsStable: r.IsStable,
	}, nil
}

// Close ends the session on disconnect or timeout. If the device held
// a stable reading for the configured threshold but never sent a final
// frame, a fallback measurement is synthesized from the last reading.
// Returns nil when the session produced nothing.
func (s *Session) Close() *model.FinalMeasurement {
	if s.finalized {
		return nil
	}
	s.finalized = true

	if s.last == nil || s.stability < s.threshold {
		return nil
	}
	return s.measurement(s.last.WeightKg)
}

func (s *Session) measurement(weightKg float64) *model.FinalMeasurement {
	return &model.FinalMeasurement{
		WeightKg:     weightKg,
		ImpedanceOhm: s.lastImpedance,
		HeartRateBPM: s.lastHeartRate,
		Timestamp:    s.now(),
	}
}
