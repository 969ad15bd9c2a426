package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/replay"
)

// Default configuration constants.
const (
	defaultWeightKg   = 70.0
	defaultImpedance  = 500
	defaultLiveFrames = 12
	defaultInterval   = 100 * time.Millisecond
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		deviceID  = flag.String("device", "AA:BB:CC:DD:EE:FF", "Device ID to replay as")
		model     = flag.String("model", "T9149", "Scale model number")
		weight    = flag.Float64("weight", defaultWeightKg, "Target weight in kilograms")
		impedance = flag.Int("impedance", defaultImpedance, "Impedance in ohms (0 to omit)")
		heartRate = flag.Int("hr", 0, "Heart rate in bpm (0 to omit)")
		frames    = flag.Int("frames", defaultLiveFrames, "Number of live frames before the final one")
		interval  = flag.Duration("interval", defaultInterval, "Delay between frames")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		fallback  = flag.Bool("fallback", false, "End with a disconnect instead of a final frame")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &replay.Config{
		BaseURL:      *baseURL,
		DeviceID:     *deviceID,
		Model:        *model,
		WeightKg:     *weight,
		ImpedanceOhm: *impedance,
		HeartRateBPM: *heartRate,
		LiveFrames:   *frames,
		Interval:     *interval,
		Timeout:      *timeout,
		Fallback:     *fallback,
	}

	if err := replay.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("replay failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
