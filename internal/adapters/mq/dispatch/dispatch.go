// Package dispatch fans frames out to a sharded worker pool. Frames are
// hashed by device ID so every frame from one device lands on the same
// worker, keeping per-device ordering without locks around the session
// state.
package dispatch

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/mq/queue"
	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
	"github.com/lyntoo/ha-eufylife-ble/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultShardCapacity  = 1024
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Frame abstracts what workers read off the shard queues.
type Frame = queue.Frame

// Handler processes one frame. Implementations own all per-device state;
// the dispatcher guarantees frames for a device arrive one at a time.
type Handler interface {
	Handle(ctx context.Context, f Frame) error
}

// shardWorker drains a single shard queue.
type shardWorker struct {
	queue   *queue.InMemoryQueue
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

func newShardWorker(q *queue.InMemoryQueue, h Handler, name string) *shardWorker {
	return &shardWorker{
		queue:    q,
		handler:  h,
		name:     name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named(name),
	}
}

// run drains the shard queue until ctx is canceled or the queue closes.
func (w *shardWorker) run(ctx context.Context) {
	defer close(w.done)

	frameChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case f, ok := <-frameChan:
			if !ok {
				return
			}
			w.process(ctx, f)
		}
	}
}

func (w *shardWorker) process(ctx context.Context, f Frame) {
	if !f.ReceivedAt.IsZero() {
		metrics.RecordDispatchLatency(float64(time.Since(f.ReceivedAt).Milliseconds()))
	}

	if err := w.handler.Handle(ctx, f); err != nil {
		w.logger.Error(ctx, "error processing frame",
			logger.String("device", f.DeviceID),
			logger.Error(err),
		)
	}
}

// Pool routes frames to shard workers by device ID hash.
type Pool struct {
	shards  []*queue.InMemoryQueue
	workers []*shardWorker
	handler Handler

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a sharded dispatcher pool with configuration options.
func NewPool(handler Handler, opts ...Option) *Pool {
	cfg := poolConfig{
		shardCount:    runtime.NumCPU(),
		shardCapacity: defaultShardCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shardCount < 1 {
		cfg.shardCount = 1
	}

	p := &Pool{
		shards:   make([]*queue.InMemoryQueue, cfg.shardCount),
		workers:  make([]*shardWorker, cfg.shardCount),
		handler:  handler,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("dispatch-pool"),
	}

	for i := 0; i < cfg.shardCount; i++ {
		q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.shardCapacity))
		p.shards[i] = q
		p.workers[i] = newShardWorker(q, handler, "dispatch-"+strconv.Itoa(i))
	}

	return p
}

// Start starts one worker per shard.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.run(ctx)
	}
}

// Dispatch enqueues a frame onto its device's shard.
// Returns false when the shard queue is full and the frame was dropped.
func (p *Pool) Dispatch(ctx context.Context, f Frame) bool {
	return p.shards[p.shardFor(f.DeviceID)].Enqueue(ctx, f)
}

// Len returns the total number of frames queued across all shards.
func (p *Pool) Len(ctx context.Context) int {
	total := 0
	for _, q := range p.shards {
		total += q.Len(ctx)
	}
	return total
}

// ShardCount returns the number of shards in the pool.
func (p *Pool) ShardCount() int {
	return len(p.shards)
}

func (p *Pool) shardFor(deviceID string) int {
	h := fnv.New32a()
	h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(len(p.shards)))
}

// Stop stops all workers without draining the shard queues.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		close(w.shutdown)
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the shard queues and waits for the workers to drain
// them, bounded by poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, q := range p.shards {
		if err := q.Close(); err != nil {
			p.logger.Error(ctx, "error closing shard queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("shard", i))
			return fmt.Errorf("shard %d shutdown timed out: %w", i, shutdownCtx.Err())
		}
	}

	return nil
}
