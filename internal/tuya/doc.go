// Package tuya implements the local-protocol client for Tuya smart bulbs.
//
// This package provides everything needed to drive a single bulb over its
// LAN protocol: the colour codec for the "28" data point, the JSON wire
// payload, the 0x000055AA frame codec with AES-128-ECB payload encryption
// (protocol version 3.3), a TCP transport, and a Session that owns the
// transport and applies the reconnect-and-resend policy.
//
// # Architecture
//
//	┌──────────────┐          ┌──────────────┐
//	│   Command    │  Send()  │   Session    │   TCP 6668
//	│   Bridge     │─────────►│  (this pkg)  │◄──────────► Bulb
//	└──────────────┘          └──────────────┘
//
// # Key Responsibilities
//
//   - Encode HSV colour values into the 20-hex-character dp "28" string
//   - Build the dps wire payload (power-on + colour) with fresh timestamps
//   - Frame and encrypt payloads for the version 3.3 local protocol
//   - Maintain the TCP connection to the bulb
//   - Retry a failed send exactly once after reconnecting
//
// # Concurrency
//
// The codec functions are pure and safe from any goroutine, including
// latency-critical producer threads. Session is single-owner: exactly one
// goroutine (the bridge consumer worker) may call Connect and Send. The
// transport protects its own connection state internally.
//
// # Data Points
//
// The bulb exposes its state as numbered data points (dps):
//
//   - "20": power switch (bool)
//   - "28": colour, as flag digit + 4 hex digits each for H/S/V + 8 zeros
//
// Hue is 0-360, saturation and brightness 0-1000. Out-of-range values are
// rejected, never clamped, so producer bugs surface instead of writing a
// silently wrong colour.
package tuya
