// dacbroker - hardware feature broker for the ES9218 Hi-Fi DAC.
//
// dacbroker discovers which adjustable DAC features exist on the running
// device, exposes their value spaces over a local REST API and an optional
// MQTT bus, and keeps hardware state synchronized with the persistent
// property store across restarts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/hifidac/dacbroker/migrations"

	"github.com/hifidac/dacbroker/internal/api"
	"github.com/hifidac/dacbroker/internal/dac"
	"github.com/hifidac/dacbroker/internal/infrastructure/config"
	"github.com/hifidac/dacbroker/internal/infrastructure/database"
	"github.com/hifidac/dacbroker/internal/infrastructure/influxdb"
	"github.com/hifidac/dacbroker/internal/infrastructure/logging"
	"github.com/hifidac/dacbroker/internal/infrastructure/mqtt"
	"github.com/hifidac/dacbroker/internal/propstore"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting dacbroker",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Property store
	props := propstore.NewSQLiteStore(db.DB)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			influxClient.Close()
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Resolve the hardware instance directory. Failure is non-fatal: the
	// controller comes up with an empty catalog.
	basePath, found := dac.ResolveBasePath(cfg.DAC.ParentPath, cfg.DAC.AddressFragment)
	if !found {
		log.Error("DAC control directory not found",
			"parent", cfg.DAC.ParentPath,
			"fragment", cfg.DAC.AddressFragment,
		)
	}

	// Build the feature controller. Priming at construction fires OnChange
	// for every supported feature, so the retained MQTT state topics are
	// populated immediately.
	controller, err := dac.New(ctx, dac.Deps{
		BasePath: basePath,
		Props:    props,
		Logger:   log.With("component", "dac"),
		OnChange: featureChangePublisher(cfg, log, mqttClient, influxClient),
	})
	if err != nil {
		return fmt.Errorf("initialising DAC controller: %w", err)
	}
	log.Info("DAC controller initialised",
		"base_path", controller.BasePath(),
		"features", controller.ListSupportedFeatures(),
	)

	// Accept set-value commands over MQTT
	if mqttClient != nil {
		topic := mqtt.Topics{}.AllFeatureCommands()
		if subErr := mqttClient.Subscribe(topic, byte(cfg.MQTT.QoS), featureCommandHandler(controller)); subErr != nil {
			return fmt.Errorf("subscribing to feature commands: %w", subErr)
		}
		log.Info("subscribed to feature commands", "topic", topic)
	}

	// Start the HTTP API
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Logger:     log.With("component", "api"),
		Controller: controller,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, InfluxDB, MQTT, database.

	log.Info("dacbroker stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses DACBROKER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DACBROKER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// featureStatePayload is the JSON body published to feature state topics.
type featureStatePayload struct {
	Feature   string `json:"feature"`
	Value     int32  `json:"value"`
	Timestamp string `json:"timestamp"`
}

// featureChangePublisher builds the OnChange hook wired into the
// controller: retained MQTT state plus an InfluxDB telemetry point for
// every successful value write. Either sink may be nil.
func featureChangePublisher(cfg *config.Config, log *logging.Logger, mqttClient *mqtt.Client, influxClient *influxdb.Client) func(dac.Feature, int32) {
	if mqttClient == nil && influxClient == nil {
		return nil
	}

	return func(f dac.Feature, value int32) {
		if mqttClient != nil {
			payload, err := json.Marshal(featureStatePayload{
				Feature:   string(f),
				Value:     value,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			if err == nil {
				topic := mqtt.Topics{}.FeatureState(string(f))
				if pubErr := mqttClient.Publish(topic, payload, byte(cfg.MQTT.QoS), true); pubErr != nil {
					log.Warn("failed to publish feature state", "feature", f, "error", pubErr)
				}
			}
		}

		if influxClient != nil {
			influxClient.WriteFeatureValue(string(f), value)
		}
	}
}

// featureCommandHandler handles set-value commands received over MQTT.
// Payload: {"value": n}. Errors are logged by the MQTT client wrapper.
func featureCommandHandler(controller *dac.Controller) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		name, ok := mqtt.FeatureFromTopic(topic)
		if !ok {
			return fmt.Errorf("unexpected command topic %q", topic)
		}

		feature, err := dac.ParseFeature(name)
		if err != nil {
			return fmt.Errorf("parsing command topic %q: %w", topic, err)
		}

		var cmd struct {
			Value int32 `json:"value"`
		}
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("decoding command payload: %w", err)
		}

		if !controller.SetValue(context.Background(), feature, cmd.Value) {
			return fmt.Errorf("set %s=%d rejected", feature, cmd.Value)
		}
		return nil
	}
}
