package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/micaww/light-vst/internal/bridge"
	"github.com/micaww/light-vst/internal/infrastructure/config"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("LIGHTVST_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("LIGHTVST_CONFIG", "")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("LIGHTVST_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestBuildQueue verifies queue construction from configuration.
func TestBuildQueue(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.QueueConfig
		want    interface{}
		wantErr bool
	}{
		{
			name: "bounded queue",
			cfg:  config.QueueConfig{Kind: "bounded", Capacity: 100},
		},
		{
			name: "unbounded queue",
			cfg:  config.QueueConfig{Kind: "unbounded"},
		},
		{
			name:    "bounded with invalid capacity",
			cfg:     config.QueueConfig{Kind: "bounded", Capacity: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := buildQueue(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("buildQueue() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildQueue() error = %v", err)
			}
			if q == nil {
				t.Fatal("buildQueue() returned nil queue")
			}
			switch tt.cfg.Kind {
			case "unbounded":
				if _, ok := q.(*bridge.UnboundedQueue); !ok {
					t.Errorf("buildQueue() = %T, want *bridge.UnboundedQueue", q)
				}
			default:
				if _, ok := q.(*bridge.DropNewestQueue); !ok {
					t.Errorf("buildQueue() = %T, want *bridge.DropNewestQueue", q)
				}
			}
		})
	}
}

// TestRun_UnreachableDeviceShutsDownCleanly verifies the daemon starts
// inert when the bulb is unreachable and exits cleanly on cancellation.
// All optional integrations are disabled so no external services are
// needed.
func TestRun_UnreachableDeviceShutsDownCleanly(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
device:
  id: "bf0123456789"
  key: "0123456789abcdef"
  host: "127.0.0.1"
  port: 59999

bridge:
  queue:
    kind: bounded
    capacity: 100
  send_timeout: 1

midi:
  enabled: false

mqtt:
  enabled: false

database:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("LIGHTVST_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("run() error = %v, want clean shutdown", err)
	}
}
