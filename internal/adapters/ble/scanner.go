// Package ble feeds scale advertisement frames into the ingest service
// by scanning for configured device addresses.
package ble

import (
	"context"
	"fmt"
	"strings"

	"tinygo.org/x/bluetooth"

	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
)

// FrameSink receives raw frames observed over the air.
type FrameSink interface {
	HandleFrame(ctx context.Context, deviceID string, data []byte) bool
	Disconnect(ctx context.Context, deviceID string)
}

// Scanner wraps BlueZ scanning with context cancellation. Only
// advertisements from configured addresses are forwarded.
type Scanner struct {
	adapter   *bluetooth.Adapter
	addresses map[string]struct{}
	sink      FrameSink

	logger logger.Logger
}

// NewScanner creates a scanner for the given adapter name ("hci0" by
// default) watching the given device addresses.
func NewScanner(adapterName string, addresses []string, sink FrameSink) *Scanner {
	if adapterName == "" {
		adapterName = "hci0"
	}

	watch := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		watch[strings.ToUpper(a)] = struct{}{}
	}

	return &Scanner{
		adapter:   bluetooth.NewAdapter(adapterName),
		addresses: watch,
		sink:      sink,
		logger:    logger.Get().Named("ble"),
	}
}

// Run enables the adapter and scans until ctx is canceled.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable: %w", err)
	}
	s.logger.Info(ctx, "adapter enabled", logger.Int("watched", len(s.addresses)))

	go func() {
		<-ctx.Done()
		_ = s.adapter.StopScan()
	}()

	// adapter.Scan blocks until StopScan() or error.
	err := s.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		address := strings.ToUpper(r.Address.String())
		if _, watched := s.addresses[address]; !watched {
			return
		}

		for _, md := range r.ManufacturerData() {
			payload := append([]byte(nil), md.Data...)
			if !s.sink.HandleFrame(ctx, address, payload) {
				s.logger.Warn(ctx, "frame dropped under backpressure",
					logger.String("device", address),
				)
			}
		}
	})

	// If ctx canceled, treat as clean shutdown.
	if ctx.Err() != nil {
		s.logger.Info(ctx, "scanning stopped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}

	s.logger.Info(ctx, "scanning stopped")
	return nil
}
