package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EUFYLIFE_CONFIG is set
//  3. env (prefix EUFYLIFE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("EUFYLIFE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: EUFYLIFE_ADDR, EUFYLIFE_QUEUE_SIZE, ...
	// Map env keys like EUFYLIFE_QUEUE_SIZE -> queue_size (flat keys).
	// A double underscore descends into nested sections, so
	// EUFYLIFE_MQTT__BROKER_URL -> mqtt.broker_url.
	envProvider := env.Provider("EUFYLIFE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "eufylife_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case cfg.StabilityThreshold < 1:
		return fmt.Errorf("%w: stability_threshold must be positive", ErrInvalidConfig)
	case cfg.StabilityEpsilonKg <= 0:
		return fmt.Errorf("%w: stability_epsilon_kg must be positive", ErrInvalidConfig)
	case cfg.SessionTimeoutSec < 1:
		return fmt.Errorf("%w: session_timeout_sec must be positive", ErrInvalidConfig)
	case cfg.MQTT.Enabled && cfg.MQTT.BrokerURL == "":
		return fmt.Errorf("%w: mqtt.broker_url must not be empty", ErrInvalidConfig)
	}
	for _, d := range cfg.Devices {
		if d.Address == "" {
			return fmt.Errorf("%w: device address must not be empty", ErrInvalidConfig)
		}
	}
	return nil
}
