// Package mqtt publishes measurement events to an MQTT broker so home
// automation consumers can subscribe to per-device topics.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	service "github.com/lyntoo/ha-eufylife-ble/internal/app"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/bodycomp"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/session"
	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
)

// Default publisher configuration constants.
const (
	defaultTopicPrefix    = "scales"
	defaultQoS            = 1
	defaultBufferSize     = 256
	publishWaitTimeout    = 5 * time.Second
	connectPollInterval   = 200 * time.Millisecond
	disconnectQuiesceMs   = 250
	connectRetryInterval  = 5 * time.Second
	maxReconnectInterval  = 60 * time.Second
	keepAliveInterval     = 30 * time.Second
	pingTimeout           = 10 * time.Second
)

// livePayload is the wire shape for live weight updates.
type livePayload struct {
	DeviceID string  `json:"device_id"`
	WeightKg float64 `json:"weight_kg"`
	Stable   bool    `json:"stable"`
}

// finalPayload is the wire shape for finalized measurements.
type finalPayload struct {
	DeviceID     string           `json:"device_id"`
	WeightKg     float64          `json:"weight_kg"`
	ImpedanceOhm *int             `json:"impedance_ohm,omitempty"`
	HeartRateBPM *int             `json:"heart_rate_bpm,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Outcome      string           `json:"outcome"`
	Trigger      string           `json:"trigger"`
	ProfileID    string           `json:"profile_id,omitempty"`
	ProfileName  string           `json:"profile_name,omitempty"`
	Body         *bodycomp.Result `json:"body,omitempty"`
}

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// Publisher implements the service event sink on top of a paho client.
// Events are buffered and published by a background goroutine so shard
// workers never wait on the broker.
type Publisher struct {
	client      pahomqtt.Client
	topicPrefix string
	qos         byte
	bufferSize  int

	mu        sync.RWMutex
	connected bool

	messages chan message
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewPublisher creates an MQTT publisher with configuration options.
func NewPublisher(brokerURL, clientID string, opts ...Option) *Publisher {
	p := &Publisher{
		topicPrefix: defaultTopicPrefix,
		qos:         defaultQoS,
		bufferSize:  defaultBufferSize,
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("mqtt"),
	}

	clientOpts := pahomqtt.NewClientOptions()
	clientOpts.AddBroker(brokerURL)
	clientOpts.SetClientID(clientID)
	clientOpts.SetCleanSession(true)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectRetryInterval(connectRetryInterval)
	clientOpts.SetMaxReconnectInterval(maxReconnectInterval)
	clientOpts.SetKeepAlive(keepAliveInterval)
	clientOpts.SetPingTimeout(pingTimeout)

	// Callbacks keep internal state accurate
	clientOpts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		p.setConnected(true)
		p.logger.Info(context.Background(), "mqtt connected", logger.String("broker", brokerURL))
	})
	clientOpts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		p.setConnected(false)
		p.logger.Warn(context.Background(), "mqtt connection lost", logger.Error(err))
	})

	for _, opt := range opts {
		opt(p, clientOpts)
	}

	p.messages = make(chan message, p.bufferSize)
	p.client = pahomqtt.NewClient(clientOpts)
	return p
}

// Connect establishes the broker connection and starts the publish
// loop. It waits for the initial connection, respecting ctx and Close.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	token := p.client.Connect()
	for {
		if token.WaitTimeout(connectPollInterval) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			go p.run()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// PublishLive enqueues a live weight update for the device topic.
func (p *Publisher) PublishLive(ctx context.Context, u session.LiveUpdate) {
	data, err := json.Marshal(livePayload{
		DeviceID: u.DeviceID,
		WeightKg: u.WeightKg,
		Stable:   u.IsStable,
	})
	if err != nil {
		p.logger.Error(ctx, "marshal live update", logger.Error(err))
		return
	}
	p.enqueue(ctx, message{
		topic:   fmt.Sprintf("%s/%s/live", p.topicPrefix, u.DeviceID),
		payload: data,
	})
}

// PublishFinal enqueues a finalized measurement, retained so late
// subscribers see the last reading.
func (p *Publisher) PublishFinal(ctx context.Context, r service.Record) {
	payload := finalPayload{
		DeviceID:     r.DeviceID,
		WeightKg:     r.Measurement.WeightKg,
		ImpedanceOhm: r.Measurement.ImpedanceOhm,
		HeartRateBPM: r.Measurement.HeartRateBPM,
		Timestamp:    r.Measurement.Timestamp,
		Outcome:      r.Outcome.String(),
		Trigger:      r.Trigger.String(),
		Body:         r.Body,
	}
	if r.Profile != nil {
		payload.ProfileID = r.Profile.ID
		payload.ProfileName = r.Profile.Name
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error(ctx, "marshal final measurement", logger.Error(err))
		return
	}
	p.enqueue(ctx, message{
		topic:    fmt.Sprintf("%s/%s/measurement", p.topicPrefix, r.DeviceID),
		payload:  data,
		retained: true,
	})
}

func (p *Publisher) enqueue(ctx context.Context, m message) {
	select {
	case p.messages <- m:
	default:
		p.logger.Warn(ctx, "publish buffer full, dropping message",
			logger.String("topic", m.topic),
		)
	}
}

// run drains the message buffer until Close.
func (p *Publisher) run() {
	defer close(p.done)
	ctx := context.Background()

	for {
		select {
		case <-p.stopCh:
			return
		case m := <-p.messages:
			p.publish(ctx, m)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, m message) {
	if !p.IsConnected() {
		p.logger.Debug(ctx, "not connected, dropping message", logger.String("topic", m.topic))
		return
	}

	token := p.client.Publish(m.topic, p.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishWaitTimeout) {
		p.logger.Error(ctx, "publish timeout", logger.String("topic", m.topic))
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Error(ctx, "publish failed",
			logger.String("topic", m.topic),
			logger.Error(err),
		)
		return
	}
	p.logger.Debug(ctx, "published", logger.String("topic", m.topic))
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Close stops the publish loop and closes the broker connection.
// Idempotent and safe to call multiple times.
func (p *Publisher) Close() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	select {
	case <-p.done:
	case <-time.After(publishWaitTimeout):
	}

	if p.client != nil {
		p.client.Disconnect(disconnectQuiesceMs)
	}
	p.setConnected(false)
	p.logger.Info(context.Background(), "mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
