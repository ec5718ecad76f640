package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/micaww/light-vst/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "lightvst-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// ─── Topics ────────────────────────────────────────────────────────

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"color command", topics.ColorCommand("bf01"), "lightvst/command/color/bf01"},
		{"ack", topics.Ack("bf01"), "lightvst/ack/bf01"},
		{"color state", topics.ColorState("bf01"), "lightvst/state/color/bf01"},
		{"system status", topics.SystemStatus(), "lightvst/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// ─── Option building ───────────────────────────────────────────────

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "vst"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers count = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://127.0.0.1:1883" {
		t.Errorf("broker URL = %q, want tcp://127.0.0.1:1883", got)
	}
	if opts.ClientID != "lightvst-test" {
		t.Errorf("ClientID = %q, want lightvst-test", opts.ClientID)
	}
	if opts.Username != "vst" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want vst/secret", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig = nil, want configured")
	}
}

// ─── LWT and status payloads ───────────────────────────────────────

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "lightvst-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "lightvst/system/status" {
		t.Errorf("WillTopic = %q, want lightvst/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}

	var will map[string]string
	if err := json.Unmarshal(opts.WillPayload, &will); err != nil {
		t.Fatalf("will payload is not valid JSON: %v", err)
	}
	if will["status"] != "offline" || will["reason"] != "unexpected_disconnect" {
		t.Errorf("will payload = %v, want offline/unexpected_disconnect", will)
	}
}

func TestStatusPayloads(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus string
	}{
		{"online", buildOnlinePayload("c1"), "online"},
		{"offline", buildOfflinePayload("c1"), "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]string
			if err := json.Unmarshal([]byte(tt.payload), &m); err != nil {
				t.Fatalf("payload is not valid JSON: %v", err)
			}
			if m["status"] != tt.wantStatus {
				t.Errorf("status = %q, want %q", m["status"], tt.wantStatus)
			}
			if m["client_id"] != "c1" {
				t.Errorf("client_id = %q, want c1", m["client_id"])
			}
		})
	}
}
