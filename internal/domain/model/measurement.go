// Package model contains domain types passed between layers.
package model

import "time"

// ReadingKind distinguishes live readings from settled ones.
type ReadingKind int

const (
	// RealTime is a live reading while the person is still on the scale.
	RealTime ReadingKind = iota
	// Final is a settled reading the device marked as authoritative.
	Final
)

// String returns the reading kind label used in logs and metrics.
func (k ReadingKind) String() string {
	if k == Final {
		return "final"
	}
	return "real_time"
}

// RawFrame is one opaque measurement buffer as delivered by a transport.
// The payload is owned by the transport and must not be retained.
type RawFrame struct {
	DeviceID   string
	Data       []byte
	ReceivedAt time.Time
}

// DecodedReading is the typed result of decoding one RawFrame.
type DecodedReading struct {
	Kind         ReadingKind
	WeightKg     float64
	ImpedanceOhm *int
	HeartRateBPM *int
	IsStable     bool
}

// FinalMeasurement is the single authoritative reading a session
// produces. Immutable once emitted.
type FinalMeasurement struct {
	WeightKg     float64
	ImpedanceOhm *int
	HeartRateBPM *int
	Timestamp    time.Time
}
