package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := New()

		Convey("Then the ingest defaults are sane", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.QueueSize, ShouldEqual, 4096)
			So(cfg.MaxProfiles, ShouldEqual, 8)
			So(cfg.StabilityThreshold, ShouldEqual, 5)
			So(cfg.StabilityEpsilonKg, ShouldEqual, 0.05)
			So(cfg.SessionTimeoutSec, ShouldEqual, 30)
			So(cfg.DefaultModel, ShouldEqual, "T9149")
			So(cfg.ShardCount, ShouldBeGreaterThan, 0)
		})

		Convey("Then the optional adapters default off", func() {
			So(cfg.MQTT.Enabled, ShouldBeFalse)
			So(cfg.MQTT.BrokerURL, ShouldEqual, "tcp://localhost:1883")
			So(cfg.BLE.Enabled, ShouldBeFalse)
			So(cfg.BLE.Adapter, ShouldEqual, "hci0")
		})
	})
}

func TestDeviceHelpers(t *testing.T) {
	Convey("Given a configuration with devices", t, func() {
		cfg := New()
		cfg.Devices = []DeviceConfig{
			{Address: "AA:BB:CC:DD:EE:01", Model: "T9148"},
			{Address: "AA:BB:CC:DD:EE:02", Model: "T9150"},
		}

		Convey("Then DeviceModels maps address to model", func() {
			models := cfg.DeviceModels()
			So(models, ShouldHaveLength, 2)
			So(models["AA:BB:CC:DD:EE:01"], ShouldEqual, "T9148")
			So(models["AA:BB:CC:DD:EE:02"], ShouldEqual, "T9150")
		})

		Convey("Then DeviceAddresses preserves order", func() {
			So(cfg.DeviceAddresses(), ShouldResemble, []string{
				"AA:BB:CC:DD:EE:01",
				"AA:BB:CC:DD:EE:02",
			})
		})
	})
}
