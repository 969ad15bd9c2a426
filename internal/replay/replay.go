// Package replay drives the ingest API with a synthetic weigh-in so the
// whole pipeline can be exercised without hardware.
package replay

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/frame"
)

// Config controls one synthetic weigh-in.
type Config struct {
	BaseURL      string
	DeviceID     string
	Model        string
	WeightKg     float64
	ImpedanceOhm int
	HeartRateBPM int
	LiveFrames   int
	Interval     time.Duration
	Timeout      time.Duration

	// Fallback skips the final frame and ends with a disconnect, so
	// the measurement comes from the stability window instead.
	Fallback bool
}

type frameRequest struct {
	DeviceID string `json:"device_id"`
	Payload  string `json:"payload"`
}

type disconnectRequest struct {
	DeviceID string `json:"device_id"`
}

// Run plays the weigh-in against the service and prints the resulting
// measurement.
func Run(ctx context.Context, cfg *Config) error {
	cap, err := frame.CapabilityForModel(cfg.Model)
	if err != nil {
		return fmt.Errorf("model %q: %w", cfg.Model, err)
	}

	client := &http.Client{Timeout: cfg.Timeout}

	// Ramp toward the target weight, then hold it steady so the
	// stability window fills up.
	for i := 0; i < cfg.LiveFrames; i++ {
		w := cfg.WeightKg
		if ramp := cfg.LiveFrames / 2; i < ramp {
			w = cfg.WeightKg * float64(i+1) / float64(ramp+1)
		}
		if err := postFrame(ctx, client, cfg, synthesize(cap, w, 0, 0, false)); err != nil {
			return err
		}
		time.Sleep(cfg.Interval)
	}

	if cfg.Fallback {
		if err := postDisconnect(ctx, client, cfg); err != nil {
			return err
		}
	} else {
		final := synthesize(cap, cfg.WeightKg, cfg.ImpedanceOhm, cfg.HeartRateBPM, true)
		if err := postFrame(ctx, client, cfg, final); err != nil {
			return err
		}
	}

	// Give the shard worker a moment to drain.
	time.Sleep(cfg.Interval * 2)

	return printLatest(ctx, client, cfg)
}

func synthesize(cap frame.Capability, weightKg float64, impedanceOhm, heartRateBPM int, final bool) []byte {
	if cap == frame.CapAdvertisement {
		return frame.EncodeAdvertisement(weightKg, impedanceOhm, heartRateBPM, false, final)
	}
	return frame.EncodeNotification(weightKg, impedanceOhm, heartRateBPM, final)
}

func postFrame(ctx context.Context, client *http.Client, cfg *Config, payload []byte) error {
	body, err := json.Marshal(frameRequest{
		DeviceID: cfg.DeviceID,
		Payload:  hex.EncodeToString(payload),
	})
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return post(ctx, client, cfg.BaseURL+"/frames", body, http.StatusAccepted)
}

func postDisconnect(ctx context.Context, client *http.Client, cfg *Config) error {
	body, err := json.Marshal(disconnectRequest{DeviceID: cfg.DeviceID})
	if err != nil {
		return fmt.Errorf("marshal disconnect: %w", err)
	}
	return post(ctx, client, cfg.BaseURL+"/disconnect", body, http.StatusOK)
}

func post(ctx context.Context, client *http.Client, url string, body []byte, want int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post %s: status %d: %s", url, resp.StatusCode, data)
	}
	return nil
}

func printLatest(ctx context.Context, client *http.Client, cfg *Config) error {
	url := fmt.Sprintf("%s/devices/%s/latest", cfg.BaseURL, cfg.DeviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, data)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Write(data)
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(os.Stdout)
	return err
}
