// Package logging provides structured logging for light-vst.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting bridge", "device", cfg.Device.ID)
//	logger.Error("failed to connect", "error", err)
//
// # Security
//
// Never log the device local key, MQTT credentials, or API tokens.
// Use field redaction for sensitive data:
//
//	logger.Info("key loaded", "key_prefix", key[:4]+"...")
package logging
