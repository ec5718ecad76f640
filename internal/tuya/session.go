package tuya

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// DeviceConfig identifies and authenticates a single device.
type DeviceConfig struct {
	// DeviceID is the device identifier assigned at pairing.
	DeviceID string

	// LocalKey is the per-device encryption key, hex or raw ASCII,
	// resolving to exactly 16 bytes.
	LocalKey string

	// Address is the device host:port. Port 6668 is the usual listener.
	Address string

	// Version is the local protocol version tag sent in the CONTROL
	// header, e.g. "3.3". Empty means DefaultProtocolVersion.
	Version string
}

// Validate checks the configuration and returns all problems found.
func (c DeviceConfig) Validate() error {
	var errs []error
	if c.DeviceID == "" {
		errs = append(errs, fmt.Errorf("device id is required"))
	}
	if c.Address == "" {
		errs = append(errs, fmt.Errorf("address is required"))
	}
	if _, err := c.keyBytes(); err != nil {
		errs = append(errs, err)
	}
	if c.Version != "" && !validVersion(c.Version) {
		errs = append(errs, fmt.Errorf("protocol version %q is not of the form N.N", c.Version))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, joinErrors(errs))
	}
	return nil
}

// keyBytes resolves LocalKey to its 16 raw bytes. Keys are usually the
// 16 ASCII characters from pairing, but a 32-char hex form is accepted.
func (c DeviceConfig) keyBytes() ([]byte, error) {
	switch len(c.LocalKey) {
	case 16:
		return []byte(c.LocalKey), nil
	case 32:
		key, err := hex.DecodeString(c.LocalKey)
		if err != nil {
			return nil, fmt.Errorf("local key is 32 chars but not valid hex: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("local key must be 16 bytes (or 32 hex chars), got %d chars", len(c.LocalKey))
	}
}

// validVersion accepts version tags of the form "3.3": one digit, a
// dot, one digit.
func validVersion(v string) bool {
	return len(v) == 3 && v[0] >= '0' && v[0] <= '9' && v[1] == '.' && v[2] >= '0' && v[2] <= '9'
}

func joinErrors(errs []error) error {
	err := errs[0]
	for _, e := range errs[1:] {
		err = fmt.Errorf("%w; %w", err, e)
	}
	return err
}

// SessionStats holds operational statistics for a session.
type SessionStats struct {
	CommandsSent  uint64
	Retries       uint64
	Reconnects    uint64
	ErrorsTotal   uint64
	Connected     bool
	LastCommandAt time.Time
}

// Session maintains the connection to one device and applies colour
// commands to it.
//
// A session is either disconnected or connected, nothing in between.
// It is owned by a single goroutine; methods are not safe for concurrent
// use. All state transitions happen inside Connect and Send.
type Session struct {
	cfg       DeviceConfig
	transport Transport
	logger    Logger
	connected bool
	now       func() time.Time

	commandsSent atomic.Uint64
	retries      atomic.Uint64
	reconnects   atomic.Uint64
	errorsTotal  atomic.Uint64
	lastCommand  atomic.Int64
}

// NewSession creates a session for the configured device.
//
// The logger is optional; pass nil to disable logging. The session starts
// disconnected; Connect verifies reachability up front, and Send dials on
// its own whenever the link has been lost since.
func NewSession(cfg DeviceConfig, logger Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := cfg.keyBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	transport, err := NewTCPTransport(cfg.Address, key, cfg.Version)
	if err != nil {
		return nil, err
	}
	return newSession(cfg, transport, logger), nil
}

// newSession wires a session around an arbitrary transport.
func newSession(cfg DeviceConfig, transport Transport, logger Logger) *Session {
	return &Session{
		cfg:       cfg,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// Connect establishes the device connection.
//
// Calling Connect while already connected is a no-op. On failure the
// session stays disconnected and the error wraps ErrDeviceUnreachable.
func (s *Session) Connect(ctx context.Context) error {
	if s.connected {
		return nil
	}

	if err := s.transport.Connect(ctx); err != nil {
		s.errorsTotal.Add(1)
		s.logWarn("device connect failed", "device_id", s.cfg.DeviceID, "address", s.cfg.Address, "error", err)
		if !isUnreachable(err) {
			err = fmt.Errorf("%w: %w", ErrDeviceUnreachable, err)
		}
		return err
	}

	s.connected = true
	s.logInfo("device connected", "device_id", s.cfg.DeviceID, "address", s.cfg.Address)
	return nil
}

// Send applies one colour command to the device.
//
// The command is validated and encoded, then transmitted with a freshly
// built payload. If the first attempt fails the session reconnects and
// retries exactly once, again with a fresh payload so the embedded
// timestamp reflects the actual send time. If the retry also fails the
// session is left disconnected and the error wraps ErrConnectionLost.
//
// A disconnected session is not a dead end: the next Send dials fresh
// and transmits once, so a device that dropped off the network is picked
// back up as soon as it answers again.
func (s *Session) Send(ctx context.Context, cmd ColorCommand) error {
	encoded, err := EncodeColor(cmd)
	if err != nil {
		return err
	}

	if s.connected {
		firstErr := s.sendOnce(ctx, encoded)
		if firstErr == nil {
			s.commandsSent.Add(1)
			s.lastCommand.Store(s.now().Unix())
			return nil
		}
		s.logWarn("send failed, reconnecting", "device_id", s.cfg.DeviceID, "error", firstErr)

		// The stale connection is dropped first so Connect dials fresh.
		s.retries.Add(1)
		s.connected = false
		s.transport.Close()
	}

	// One connect-and-send cycle. Reached both when a live connection
	// just failed and when an earlier failure left the session
	// disconnected.
	if err := s.transport.Connect(ctx); err != nil {
		s.errorsTotal.Add(1)
		s.logError("reconnect failed", "device_id", s.cfg.DeviceID, "error", err)
		if !isUnreachable(err) {
			err = fmt.Errorf("%w: %w", ErrDeviceUnreachable, err)
		}
		return err
	}
	s.connected = true
	s.reconnects.Add(1)

	if err := s.sendOnce(ctx, encoded); err != nil {
		s.errorsTotal.Add(1)
		s.connected = false
		s.transport.Close()
		s.logError("resend after reconnect failed", "device_id", s.cfg.DeviceID, "error", err)
		if !isLost(err) {
			err = fmt.Errorf("%w: %w", ErrConnectionLost, err)
		}
		return err
	}

	s.commandsSent.Add(1)
	s.lastCommand.Store(s.now().Unix())
	return nil
}

// sendOnce builds a fresh payload and transmits it.
func (s *Session) sendOnce(ctx context.Context, encodedColor string) error {
	payload := NewColorPayload(s.cfg.DeviceID, encodedColor, s.now())
	data, err := payload.Marshal()
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, data)
}

// Connected reports whether the session considers itself connected.
func (s *Session) Connected() bool {
	return s.connected
}

// Close tears down the device connection.
func (s *Session) Close() error {
	s.connected = false
	return s.transport.Close()
}

// Stats returns a snapshot of session statistics.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		CommandsSent:  s.commandsSent.Load(),
		Retries:       s.retries.Load(),
		Reconnects:    s.reconnects.Load(),
		ErrorsTotal:   s.errorsTotal.Load(),
		Connected:     s.connected,
		LastCommandAt: time.Unix(s.lastCommand.Load(), 0),
	}
}

func isUnreachable(err error) bool {
	return errors.Is(err, ErrDeviceUnreachable)
}

func isLost(err error) bool {
	return errors.Is(err, ErrConnectionLost)
}

func (s *Session) logInfo(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Info(msg, kv...)
	}
}

func (s *Session) logWarn(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, kv...)
	}
}

func (s *Session) logError(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Error(msg, kv...)
	}
}
