package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for lightvst.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	MIDI     MIDIConfig     `yaml:"midi"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig identifies the target bulb.
type DeviceConfig struct {
	// ID is the device identifier assigned at pairing.
	ID string `yaml:"id"`
	// Key is the per-device local encryption key. Prefer setting this
	// via LIGHTVST_DEVICE_KEY rather than the config file.
	Key string `yaml:"key"`
	// Host is the device IP address or hostname on the local network.
	Host string `yaml:"host"`
	// Port is the local protocol listener port.
	Port int `yaml:"port"`
	// Version is the local protocol version tag, e.g. "3.3".
	Version string `yaml:"version"`
}

// Address returns the device host:port.
func (d DeviceConfig) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// BridgeConfig tunes the command queue and worker.
type BridgeConfig struct {
	Queue       QueueConfig `yaml:"queue"`
	SendTimeout int         `yaml:"send_timeout"` // seconds
}

// QueueConfig selects the queue behaviour under backpressure.
type QueueConfig struct {
	// Kind is "bounded" (drop newest when full) or "unbounded".
	Kind string `yaml:"kind"`
	// Capacity applies to the bounded kind.
	Capacity int `yaml:"capacity"`
}

// MIDIConfig controls the MIDI input listener.
type MIDIConfig struct {
	Enabled bool `yaml:"enabled"`
	// DeviceName selects an input by substring match; empty takes the
	// first device.
	DeviceName string `yaml:"device_name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains reconnection behaviour settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DatabaseConfig contains SQLite settings for the applied-colour history.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"` // seconds
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
	// BatchSize is the number of points buffered before a write.
	BatchSize int `yaml:"batch_size"`
	// FlushInterval is the maximum buffering delay in seconds.
	FlushInterval int `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr
}

// Load reads configuration from a YAML file, applies environment variable
// overrides and validates the result.
//
// Environment variables follow the pattern LIGHTVST_SECTION_KEY.
// For example: LIGHTVST_DEVICE_KEY, LIGHTVST_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Port:    6668,
			Version: "3.3",
		},
		Bridge: BridgeConfig{
			Queue: QueueConfig{
				Kind:     "bounded",
				Capacity: 100,
			},
			SendTimeout: 15,
		},
		MIDI: MIDIConfig{
			Enabled: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lightvst",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/lightvst.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LIGHTVST_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("LIGHTVST_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
	if v := os.Getenv("LIGHTVST_DEVICE_KEY"); v != "" {
		cfg.Device.Key = v
	}
	if v := os.Getenv("LIGHTVST_DEVICE_HOST"); v != "" {
		cfg.Device.Host = v
	}
	if v := os.Getenv("LIGHTVST_DEVICE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Device.Port = port
		}
	}
	if v := os.Getenv("LIGHTVST_DEVICE_VERSION"); v != "" {
		cfg.Device.Version = v
	}

	// MIDI
	if v := os.Getenv("LIGHTVST_MIDI_DEVICE"); v != "" {
		cfg.MIDI.DeviceName = v
	}

	// MQTT
	if v := os.Getenv("LIGHTVST_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LIGHTVST_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LIGHTVST_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Database
	if v := os.Getenv("LIGHTVST_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("LIGHTVST_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("LIGHTVST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}
	if c.Device.Host == "" {
		errs = append(errs, "device.host is required")
	}
	if c.Device.Port < 1 || c.Device.Port > 65535 {
		errs = append(errs, "device.port must be between 1 and 65535")
	}
	if l := len(c.Device.Key); l != 16 && l != 32 {
		errs = append(errs, "device.key must be 16 characters or 32 hex characters (set LIGHTVST_DEVICE_KEY environment variable)")
	}
	if v := c.Device.Version; len(v) != 3 || v[1] != '.' || v[0] < '0' || v[0] > '9' || v[2] < '0' || v[2] > '9' {
		errs = append(errs, "device.version must be of the form N.N, e.g. \"3.3\"")
	}

	// Bridge validation
	switch c.Bridge.Queue.Kind {
	case "bounded":
		if c.Bridge.Queue.Capacity < 1 {
			errs = append(errs, "bridge.queue.capacity must be positive for the bounded queue")
		}
	case "unbounded":
	default:
		errs = append(errs, "bridge.queue.kind must be \"bounded\" or \"unbounded\"")
	}
	if c.Bridge.SendTimeout < 1 {
		errs = append(errs, "bridge.send_timeout must be at least 1 second")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when database is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set LIGHTVST_INFLUXDB_TOKEN environment variable)")
		}
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSendTimeout returns the bridge send timeout as a Duration.
func (c *Config) GetSendTimeout() time.Duration {
	return time.Duration(c.Bridge.SendTimeout) * time.Second
}

// GetBusyTimeout returns the SQLite busy timeout as a Duration.
func (c *Config) GetBusyTimeout() time.Duration {
	return time.Duration(c.Database.BusyTimeout) * time.Second
}
