package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  id: "bf0123456789"
  key: "0123456789abcdef"
  host: "192.168.1.50"
bridge:
  queue:
    kind: "bounded"
    capacity: 50
midi:
  enabled: true
  device_name: "nanoKONTROL"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "lightvst-test"
  qos: 1
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "bf0123456789" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "bf0123456789")
	}
	if cfg.Device.Address() != "192.168.1.50:6668" {
		t.Errorf("Device.Address() = %q, want default port applied", cfg.Device.Address())
	}
	if cfg.Device.Version != "3.3" {
		t.Errorf("Device.Version = %q, want default 3.3", cfg.Device.Version)
	}
	if cfg.Bridge.Queue.Capacity != 50 {
		t.Errorf("Bridge.Queue.Capacity = %d, want 50", cfg.Bridge.Queue.Capacity)
	}
	if cfg.MIDI.DeviceName != "nanoKONTROL" {
		t.Errorf("MIDI.DeviceName = %q, want nanoKONTROL", cfg.MIDI.DeviceName)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want broker.local", cfg.MQTT.Broker.Host)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
device:
  id: "bf0123456789"
  host: "192.168.1.50"
`
	t.Setenv("LIGHTVST_DEVICE_KEY", "fedcba9876543210")
	t.Setenv("LIGHTVST_MQTT_PASSWORD", "hunter2")
	t.Setenv("LIGHTVST_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Key != "fedcba9876543210" {
		t.Errorf("Device.Key = %q, want env override", cfg.Device.Key)
	}
	if cfg.MQTT.Auth.Password != "hunter2" {
		t.Errorf("MQTT.Auth.Password = %q, want env override", cfg.MQTT.Auth.Password)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Device.ID = "bf0123456789"
		cfg.Device.Key = "0123456789abcdef"
		cfg.Device.Host = "192.168.1.50"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"hex key", func(c *Config) { c.Device.Key = "00112233445566778899aabbccddeeff" }, false},
		{"unbounded queue", func(c *Config) { c.Bridge.Queue.Kind = "unbounded" }, false},
		{"protocol version override", func(c *Config) { c.Device.Version = "3.1" }, false},
		{"bad protocol version", func(c *Config) { c.Device.Version = "v33" }, true},
		{"empty protocol version", func(c *Config) { c.Device.Version = "" }, true},
		{"missing device id", func(c *Config) { c.Device.ID = "" }, true},
		{"missing device host", func(c *Config) { c.Device.Host = "" }, true},
		{"bad device port", func(c *Config) { c.Device.Port = 0 }, true},
		{"short key", func(c *Config) { c.Device.Key = "short" }, true},
		{"bad queue kind", func(c *Config) { c.Bridge.Queue.Kind = "ring" }, true},
		{"zero bounded capacity", func(c *Config) { c.Bridge.Queue.Capacity = 0 }, true},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"mqtt enabled without host", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker.Host = "" }, true},
		{"influxdb enabled without token", func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.URL = "http://localhost:8086" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.GetSendTimeout(); got != 15*time.Second {
		t.Errorf("GetSendTimeout() = %v, want 15s", got)
	}
	if got := cfg.GetBusyTimeout(); got != 5*time.Second {
		t.Errorf("GetBusyTimeout() = %v, want 5s", got)
	}
}
