package tuya

import "errors"

// Domain errors for the Tuya device package.
var (
	// ErrDeviceUnreachable is returned when the device cannot be reached or
	// the transport connection cannot be established.
	ErrDeviceUnreachable = errors.New("tuya: device unreachable")

	// ErrConnectionLost is returned by Send when both the initial attempt
	// and the single reconnect-and-resend retry fail. The session is left
	// disconnected; the next Send will reconnect.
	ErrConnectionLost = errors.New("tuya: connection lost")

	// ErrNotConnected is returned when an operation requires an established
	// transport connection but there is none.
	ErrNotConnected = errors.New("tuya: not connected")

	// ErrInvalidColor is returned when a colour component is outside its
	// documented range (hue 0-360, saturation/brightness 0-1000).
	ErrInvalidColor = errors.New("tuya: invalid colour value")

	// ErrInvalidConfig is returned when the device configuration is
	// incomplete or malformed (e.g. a local key that is not 16 bytes).
	ErrInvalidConfig = errors.New("tuya: invalid device config")

	// ErrInvalidFrame is returned when a received frame is malformed.
	ErrInvalidFrame = errors.New("tuya: invalid frame")

	// ErrCRCMismatch is returned when a received frame fails its CRC check.
	ErrCRCMismatch = errors.New("tuya: frame CRC mismatch")

	// ErrDeviceRejected is returned when the device answers a command with
	// a non-zero return code.
	ErrDeviceRejected = errors.New("tuya: device rejected command")
)
