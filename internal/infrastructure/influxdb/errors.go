package influxdb

import "errors"

// Sentinel errors, checked with errors.Is. Batch write failures never
// surface here; they arrive through the SetOnError callback.
var (
	// ErrDisabled indicates InfluxDB telemetry is switched off in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed indicates the startup ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected indicates the client was closed or never connected.
	ErrNotConnected = errors.New("influxdb: not connected")
)
