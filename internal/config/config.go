// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// DeviceConfig maps one scale's address to its model number.
type DeviceConfig struct {
	// Address is the device identifier frames arrive under, typically
	// a Bluetooth MAC address.
	Address string `koanf:"address"`

	// Model is the scale model number, e.g. "T9148".
	Model string `koanf:"model"`
}

// MQTTConfig configures the optional broker publisher.
type MQTTConfig struct {
	// Enabled turns the MQTT publisher on.
	Enabled bool `koanf:"enabled"`

	// BrokerURL is the broker address, e.g. "tcp://localhost:1883".
	BrokerURL string `koanf:"broker_url"`

	// ClientID identifies this process to the broker.
	ClientID string `koanf:"client_id"`

	// TopicPrefix is the leading topic segment for all messages.
	TopicPrefix string `koanf:"topic_prefix"`

	// Username and Password are optional broker credentials.
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// BLEConfig configures the optional Bluetooth scanner.
type BLEConfig struct {
	// Enabled turns the scanner on.
	Enabled bool `koanf:"enabled"`

	// Adapter is the HCI adapter name, e.g. "hci0".
	Adapter string `koanf:"adapter"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds each dispatcher shard's frame queue.
	QueueSize int `koanf:"queue_size"`

	// ShardCount sets the number of dispatcher shards.
	ShardCount int `koanf:"shard_count"`

	// MaxProfiles caps the profile registry.
	MaxProfiles int `koanf:"max_profiles"`

	// DedupeDevices sets how many devices the frame suppressor tracks.
	DedupeDevices int `koanf:"dedupe_devices"`

	// StabilityThreshold is the number of consecutive in-band readings
	// required before a disconnect can finalize a session.
	StabilityThreshold int `koanf:"stability_threshold"`

	// StabilityEpsilonKg is the weight band within which consecutive
	// readings count as stable.
	StabilityEpsilonKg float64 `koanf:"stability_epsilon_kg"`

	// SessionTimeoutSec closes sessions idle for this many seconds.
	SessionTimeoutSec int `koanf:"session_timeout_sec"`

	// DefaultModel is assumed for devices not listed under Devices.
	DefaultModel string `koanf:"default_model"`

	// Devices maps known scales to their models.
	Devices []DeviceConfig `koanf:"devices"`

	// MQTT configures the optional broker publisher.
	MQTT MQTTConfig `koanf:"mqtt"`

	// BLE configures the optional Bluetooth scanner.
	BLE BLEConfig `koanf:"ble"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		QueueSize:          4096,
		ShardCount:         runtime.NumCPU(),
		MaxProfiles:        8,
		DedupeDevices:      256,
		StabilityThreshold: 5,
		StabilityEpsilonKg: 0.05,
		SessionTimeoutSec:  30,
		DefaultModel:       "T9149",
		MQTT: MQTTConfig{
			BrokerURL:   "tcp://localhost:1883",
			ClientID:    "eufylife-ingest",
			TopicPrefix: "scales",
		},
		BLE: BLEConfig{
			Adapter: "hci0",
		},
	}
}

// DeviceModels returns the configured devices as an address to model map.
func (c *Config) DeviceModels() map[string]string {
	out := make(map[string]string, len(c.Devices))
	for _, d := range c.Devices {
		out[d.Address] = d.Model
	}
	return out
}

// DeviceAddresses returns the configured device addresses.
func (c *Config) DeviceAddresses() []string {
	out := make([]string, len(c.Devices))
	for i, d := range c.Devices {
		out[i] = d.Address
	}
	return out
}
