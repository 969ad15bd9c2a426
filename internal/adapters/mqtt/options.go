// Package mqtt publishes measurement events to an MQTT broker.
package mqtt

import (
	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
)

// Option applies a configuration option to the Publisher.
type Option func(*Publisher, *pahomqtt.ClientOptions)

// WithTopicPrefix sets the leading topic segment for all messages.
func WithTopicPrefix(prefix string) Option {
	return func(p *Publisher, _ *pahomqtt.ClientOptions) {
		if prefix != "" {
			p.topicPrefix = prefix
		}
	}
}

// WithQoS sets the quality of service level for published messages.
func WithQoS(qos byte) Option {
	return func(p *Publisher, _ *pahomqtt.ClientOptions) {
		if qos <= 2 {
			p.qos = qos
		}
	}
}

// WithBufferSize sets the outgoing message buffer size.
func WithBufferSize(size int) Option {
	return func(p *Publisher, _ *pahomqtt.ClientOptions) {
		if size > 0 {
			p.bufferSize = size
		}
	}
}

// WithCredentials sets the broker username and password.
func WithCredentials(username, password string) Option {
	return func(_ *Publisher, o *pahomqtt.ClientOptions) {
		o.SetUsername(username)
		o.SetPassword(password)
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher, _ *pahomqtt.ClientOptions) {
		if l != nil {
			p.logger = l
		}
	}
}
