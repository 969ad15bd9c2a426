package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/ble"
	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/http/api"
	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/mqtt"
	app "github.com/lyntoo/ha-eufylife-ble/internal/app"
	"github.com/lyntoo/ha-eufylife-ble/internal/config"
	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	mqttConnectLimit  = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithQueueSize(cfg.QueueSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithMaxProfiles(cfg.MaxProfiles),
		app.WithDedupeDevices(cfg.DedupeDevices),
		app.WithStabilityThreshold(cfg.StabilityThreshold),
		app.WithStabilityEpsilon(cfg.StabilityEpsilonKg),
		app.WithSessionTimeout(time.Duration(cfg.SessionTimeoutSec) * time.Second),
		app.WithDevices(cfg.DeviceModels()),
		app.WithDefaultModel(cfg.DefaultModel),
	}

	// Optional MQTT publisher
	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		mqttOpts := []mqtt.Option{
			mqtt.WithTopicPrefix(cfg.MQTT.TopicPrefix),
		}
		if cfg.MQTT.Username != "" {
			mqttOpts = append(mqttOpts, mqtt.WithCredentials(cfg.MQTT.Username, cfg.MQTT.Password))
		}
		publisher = mqtt.NewPublisher(cfg.MQTT.BrokerURL, cfg.MQTT.ClientID, mqttOpts...)

		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectLimit)
		if err := publisher.Connect(connectCtx); err != nil {
			log.Error(ctx, "mqtt connect failed, continuing without publisher", logger.Error(err))
			publisher = nil
		}
		cancel()
		if publisher != nil {
			defer publisher.Close()
			opts = append(opts, app.WithPublisher(publisher))
		}
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Optional Bluetooth scanner feeding frames directly
	if cfg.BLE.Enabled {
		scanner := ble.NewScanner(cfg.BLE.Adapter, cfg.DeviceAddresses(), svc)
		go func() {
			if err := scanner.Run(ctx); err != nil {
				log.Error(ctx, "ble scanner stopped", logger.Error(err))
			}
		}()
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
