package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	t.Setenv("EUFYLIFE_CONFIG", "")

	Convey("Given no file and no environment overrides", t, func() {
		cfg, err := Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":9080")
		So(cfg.QueueSize, ShouldEqual, 4096)
	})
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EUFYLIFE_CONFIG", "")
	t.Setenv("EUFYLIFE_ADDR", ":7070")
	t.Setenv("EUFYLIFE_STABILITY_THRESHOLD", "3")
	t.Setenv("EUFYLIFE_MQTT__BROKER_URL", "tcp://broker.local:1883")

	Convey("Given environment overrides", t, func() {
		cfg, err := Load(context.Background())

		So(err, ShouldBeNil)

		Convey("Then flat keys override defaults", func() {
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.StabilityThreshold, ShouldEqual, 3)
		})

		Convey("Then double underscore descends into sections", func() {
			So(cfg.MQTT.BrokerURL, ShouldEqual, "tcp://broker.local:1883")
		})

		Convey("Then untouched keys keep their defaults", func() {
			So(cfg.QueueSize, ShouldEqual, 4096)
			So(cfg.DefaultModel, ShouldEqual, "T9149")
		})
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
addr: ":6060"
default_model: "T9148"
devices:
  - address: "AA:BB:CC:DD:EE:01"
    model: "T9150"
mqtt:
  topic_prefix: "home/scales"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("EUFYLIFE_CONFIG", path)

	Convey("Given a YAML configuration file", t, func() {
		cfg, err := Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":6060")
		So(cfg.DefaultModel, ShouldEqual, "T9148")
		So(cfg.MQTT.TopicPrefix, ShouldEqual, "home/scales")
		So(cfg.Devices, ShouldHaveLength, 1)
		So(cfg.Devices[0].Model, ShouldEqual, "T9150")
	})

	Convey("Given environment on top of the file", t, func() {
		t.Setenv("EUFYLIFE_ADDR", ":5050")
		defer os.Unsetenv("EUFYLIFE_ADDR")

		cfg, err := Load(context.Background())

		So(err, ShouldBeNil)

		Convey("Then env wins over file", func() {
			So(cfg.Addr, ShouldEqual, ":5050")
		})

		Convey("Then file values without env overrides survive", func() {
			So(cfg.DefaultModel, ShouldEqual, "T9148")
		})
	})
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("EUFYLIFE_CONFIG", "")

	Convey("Given invalid settings", t, func() {
		cases := map[string]string{
			"EUFYLIFE_ADDR":                 "",
			"EUFYLIFE_QUEUE_SIZE":           "0",
			"EUFYLIFE_STABILITY_THRESHOLD":  "0",
			"EUFYLIFE_STABILITY_EPSILON_KG": "-1",
			"EUFYLIFE_SESSION_TIMEOUT_SEC":  "0",
		}

		for key, value := range cases {
			Convey("Then "+key+"="+value+" is rejected", func() {
				t.Setenv(key, value)
				defer os.Unsetenv(key)

				_, err := Load(context.Background())
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			})
		}
	})

	Convey("Given a missing configuration file", t, func() {
		t.Setenv("EUFYLIFE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		defer os.Unsetenv("EUFYLIFE_CONFIG")

		_, err := Load(context.Background())
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
	})
}
