package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
)

// recordingHandler collects frames by device.
type recordingHandler struct {
	mu     sync.Mutex
	frames map[string][]byte
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{frames: make(map[string][]byte)}
}

func (h *recordingHandler) Handle(_ context.Context, f Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames[f.DeviceID] = append(h.frames[f.DeviceID], f.Data...)
	return nil
}

func (h *recordingHandler) sequence(deviceID string) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]byte, len(h.frames[deviceID]))
	copy(out, h.frames[deviceID])
	return out
}

func TestPool_PerDeviceOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newRecordingHandler()
	p := NewPool(h, WithShardCount(4), WithShardCapacity(64))
	p.Start(ctx)

	devices := []string{"dev-a", "dev-b", "dev-c"}
	const perDevice = 20

	for i := 0; i < perDevice; i++ {
		for _, d := range devices {
			f := model.RawFrame{DeviceID: d, Data: []byte{byte(i)}, ReceivedAt: time.Now()}
			if !p.Dispatch(ctx, f) {
				t.Fatalf("dispatch failed for %s frame %d", d, i)
			}
		}
	}

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	for _, d := range devices {
		seq := h.sequence(d)
		if len(seq) != perDevice {
			t.Fatalf("device %s: expected %d frames, got %d", d, perDevice, len(seq))
		}
		for i, b := range seq {
			if b != byte(i) {
				t.Errorf("device %s: frame %d out of order, got %d", d, i, b)
			}
		}
	}
}

func TestPool_ShardBackpressure(t *testing.T) {
	ctx := context.Background()

	// One shard, tiny capacity, no workers started so nothing drains.
	blocked := newRecordingHandler()
	p := NewPool(blocked, WithShardCount(1), WithShardCapacity(2))

	f := model.RawFrame{DeviceID: "dev-a", Data: []byte{0x01}}
	if !p.Dispatch(ctx, f) || !p.Dispatch(ctx, f) {
		t.Fatal("expected first two dispatches to succeed")
	}
	if p.Dispatch(ctx, f) {
		t.Error("expected dispatch past shard capacity to fail")
	}
	if p.Len(ctx) != 2 {
		t.Errorf("expected 2 queued frames, got %d", p.Len(ctx))
	}
}

func TestPool_ShardStickiness(t *testing.T) {
	p := NewPool(newRecordingHandler(), WithShardCount(8))

	for _, d := range []string{"dev-a", "dev-b", "AA:BB:CC:DD:EE:FF"} {
		first := p.shardFor(d)
		for i := 0; i < 10; i++ {
			if got := p.shardFor(d); got != first {
				t.Fatalf("device %s: shard changed from %d to %d", d, first, got)
			}
		}
	}
}
