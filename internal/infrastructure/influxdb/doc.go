// Package influxdb provides InfluxDB connectivity for light-vst.
//
// It wraps the official influxdb-client-go v2 library with light-vst-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series telemetry for:
//   - Applied colour commands (hue, saturation, brightness, send latency)
//   - Bridge queue counters (enqueued, dropped, applied, deduped, failed)
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "lightvst",
//	    Bucket: "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteColorCommand("bf0123456789", "midi", cmd, latency)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps per-command overhead negligible even during rapid mod-wheel sweeps.
package influxdb
