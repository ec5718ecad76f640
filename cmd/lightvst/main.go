// light-vst - MIDI and MQTT to Tuya smart bulb bridge
//
// This is the main entry point for the standalone bridge daemon. It
// listens for mod-wheel movement on a MIDI input and colour commands
// on MQTT, and drives a Tuya smart bulb over the local network:
//   - Local-only device control (no Tuya cloud)
//   - Non-blocking producers with a single delivery worker
//   - Optional SQLite history and InfluxDB telemetry
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micaww/light-vst/internal/bridge"
	"github.com/micaww/light-vst/internal/history"
	"github.com/micaww/light-vst/internal/infrastructure/config"
	"github.com/micaww/light-vst/internal/infrastructure/database"
	"github.com/micaww/light-vst/internal/infrastructure/influxdb"
	"github.com/micaww/light-vst/internal/infrastructure/logging"
	"github.com/micaww/light-vst/internal/infrastructure/mqtt"
	"github.com/micaww/light-vst/internal/midiin"
	"github.com/micaww/light-vst/internal/remote"
	"github.com/micaww/light-vst/internal/tuya"
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

// historyWriteTimeout bounds one history insert from the worker callback.
const historyWriteTimeout = 2 * time.Second

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
	log.Info("starting light-vst",
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

	// Open database (optional)
	var historyRepo *history.SQLiteRepository
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.Open(database.Config{
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

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete")

		historyRepo = history.NewSQLiteRepository(db.DB)
	} else {
		log.Info("database disabled")
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
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the device session
	session, err := tuya.NewSession(tuya.DeviceConfig{
		DeviceID: cfg.Device.ID,
		LocalKey: cfg.Device.Key,
		Address:  fmt.Sprintf("%s:%d", cfg.Device.Host, cfg.Device.Port),
		Version:  cfg.Device.Version,
	}, log.With("component", "tuya"))
	if err != nil {
		return fmt.Errorf("creating device session: %w", err)
	}

	// Build the command queue
	queue, err := buildQueue(cfg.Bridge.Queue)
	if err != nil {
		return fmt.Errorf("building command queue: %w", err)
	}

	// The remote adapter is created after the bridge (it enqueues into
	// it), so the applied-colour mirror is wired through this pointer.
	// Assigned before Start so the worker goroutine never races it.
	var remoteAdapter *remote.Adapter

	br, err := bridge.New(bridge.Options{
		Queue:       queue,
		Session:     session,
		Logger:      log.With("component", "bridge"),
		SendTimeout: cfg.GetSendTimeout(),
		OnApplied: func(cmd bridge.Command, latency time.Duration) {
			if historyRepo != nil {
				recordCtx, recordCancel := context.WithTimeout(context.Background(), historyWriteTimeout)
				if recordErr := historyRepo.RecordApplied(recordCtx, cfg.Device.ID, cmd.Color, cmd.Source, latency); recordErr != nil {
					log.Warn("history write failed", "error", recordErr)
				}
				recordCancel()
			}
			if influxClient != nil {
				influxClient.WriteColorCommand(cfg.Device.ID, cmd.Source, cmd.Color, latency)
			}
			if remoteAdapter != nil {
				remoteAdapter.PublishApplied(cmd, latency)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	// Connect to MQTT broker and start the remote control surface (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
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

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		mqttClient.SetLogger(log.With("component", "mqtt"))

		// #nosec G115 -- QoS validated to 0-2 by config
		remoteAdapter = remote.New(mqttClient, br, cfg.Device.ID, byte(cfg.MQTT.QoS), log.With("component", "remote"))
		if startErr := remoteAdapter.Start(); startErr != nil {
			return fmt.Errorf("starting remote adapter: %w", startErr)
		}
		defer func() {
			log.Info("stopping remote adapter")
			remoteAdapter.Stop()
		}()
	} else {
		log.Info("MQTT disabled")
	}

	// Open the MIDI input (optional); a missing controller is not fatal.
	if cfg.MIDI.Enabled {
		listener, openErr := midiin.Open(midiin.Config{
			DeviceName: cfg.MIDI.DeviceName,
		}, br, log.With("component", "midi"))
		if openErr != nil {
			log.Warn("MIDI input unavailable", "error", openErr)
		} else {
			listener.Start()
			defer func() {
				log.Info("stopping MIDI listener")
				listener.Stop()
			}()
			log.Info("MIDI listener started", "device_name", cfg.MIDI.DeviceName)
		}
	} else {
		log.Info("MIDI disabled")
	}

	// Start the bridge last: producers are wired, now connect the bulb
	// and let the worker drain anything they buffered meanwhile.
	if err := br.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		br.Stop()
	}()
	if br.Inert() {
		log.Warn("device unreachable at startup, accepting and discarding commands",
			"device", cfg.Device.ID,
			"host", cfg.Device.Host,
		)
	} else {
		log.Info("device connected",
			"device", cfg.Device.ID,
			"host", cfg.Device.Host,
		)
	}

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Stop/Close calls run in reverse order:
	// 1. Bridge (stops the worker, closes the device session)
	// 2. MIDI listener
	// 3. Remote adapter, then MQTT
	// 4. InfluxDB (if enabled)
	// 5. Database (if enabled)

	log.Info("light-vst stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LIGHTVST_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LIGHTVST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildQueue constructs the bridge queue described by the configuration.
func buildQueue(cfg config.QueueConfig) (bridge.Queue, error) {
	switch cfg.Kind {
	case "unbounded":
		return bridge.NewUnboundedQueue(), nil
	default:
		return bridge.NewDropNewestQueue(cfg.Capacity)
	}
}

// healthCheck verifies optional infrastructure connections are healthy.
// Any of the clients may be nil when the corresponding feature is
// disabled. The device session is deliberately excluded: an unreachable
// bulb leaves the bridge inert rather than failing startup.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
