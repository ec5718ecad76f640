package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/micaww/light-vst/internal/tuya"
)

// WriteColorCommand records a successfully applied colour command.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Target bulb identifier
//   - source: Origin of the command (midi, param, mqtt)
//   - cmd: The applied colour
//   - latency: Time from dequeue to device acknowledgement
//
// Example:
//
//	client.WriteColorCommand("bf0123456789", "midi", cmd, 12*time.Millisecond)
func (c *Client) WriteColorCommand(deviceID string, source string, cmd tuya.ColorCommand, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"color_command",
		map[string]string{
			"device_id": deviceID,
			"source":    source,
		},
		map[string]interface{}{
			"hue":        int64(cmd.Hue),
			"saturation": int64(cmd.Saturation),
			"brightness": int64(cmd.Brightness),
			"immediate":  cmd.Immediate,
			"latency_ms": latency.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBridgeStats records a periodic snapshot of bridge queue counters.
//
// Parameters:
//   - deviceID: Target bulb identifier
//   - enqueued, dropped, applied, deduped, failed: Cumulative counters
func (c *Client) WriteBridgeStats(deviceID string, enqueued, dropped, applied, deduped, failed uint64) {
	if !c.IsConnected() {
		return
	}

	// #nosec G115 -- counters are monotonic and far below int64 range
	point := write.NewPoint(
		"bridge_stats",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"enqueued": int64(enqueued),
			"dropped":  int64(dropped),
			"applied":  int64(applied),
			"deduped":  int64(deduped),
			"failed":   int64(failed),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
