package tuya

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Default timeouts for device communication.
const (
	// defaultConnectTimeout is the maximum time to wait for the TCP dial.
	defaultConnectTimeout = 5 * time.Second

	// defaultReadTimeout is the timeout for reading a device response.
	defaultReadTimeout = 5 * time.Second

	// defaultWriteTimeout is the timeout for write operations.
	defaultWriteTimeout = 3 * time.Second
)

// TransportStats holds operational statistics for a transport.
type TransportStats struct {
	FramesTx     uint64
	FramesRx     uint64
	ErrorsTotal  uint64
	LastActivity time.Time
	Connected    bool
}

// Transport moves CONTROL payloads to and from a single device.
//
// Implementations must be safe for use by a single goroutine at a time;
// the session serialises access.
type Transport interface {
	// Connect establishes the device connection. Calling Connect on an
	// already connected transport is a no-op.
	Connect(ctx context.Context) error

	// Send transmits one CONTROL payload and waits for the device to
	// acknowledge it. The payload is the plaintext JSON document.
	Send(ctx context.Context, payload []byte) error

	// IsConnected reports whether the transport believes the connection
	// is up. A true result does not guarantee the next Send succeeds.
	IsConnected() bool

	// Close tears down the connection. Safe to call repeatedly.
	Close() error
}

// Ensure TCPTransport implements Transport.
var _ Transport = (*TCPTransport)(nil)

// TCPTransport talks the local protocol to a device over TCP port 6668.
//
// Each Send encrypts the payload with the device local key, frames it as
// a CONTROL command and reads back the device response frame, failing if
// the device reports a non-zero return code.
type TCPTransport struct {
	address  string
	localKey []byte
	version  string

	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration

	// Connection state
	connMu    sync.Mutex
	conn      net.Conn
	connected bool

	// Frame sequence counter
	seq atomic.Uint32

	// Statistics (atomic for cheap reads)
	framesTx     atomic.Uint64
	framesRx     atomic.Uint64
	errorsTotal  atomic.Uint64
	lastActivity atomic.Int64 // Unix timestamp
}

// NewTCPTransport creates a transport for the device at address
// (host:port) using the given 16-byte local key and protocol version.
// An empty version means DefaultProtocolVersion.
func NewTCPTransport(address string, localKey []byte, version string) (*TCPTransport, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}
	if len(localKey) != 16 {
		return nil, fmt.Errorf("%w: local key must be 16 bytes, got %d", ErrInvalidConfig, len(localKey))
	}
	if version == "" {
		version = DefaultProtocolVersion
	}

	key := make([]byte, len(localKey))
	copy(key, localKey)

	return &TCPTransport{
		address:        address,
		localKey:       key,
		version:        version,
		connectTimeout: defaultConnectTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
	}, nil
}

// Connect dials the device. Idempotent while a connection is up.
func (t *TCPTransport) Connect(ctx context.Context) error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	if t.connected {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	dialCtx, cancel := context.WithTimeout(ctx, t.connectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", t.address)
	if err != nil {
		t.errorsTotal.Add(1)
		return fmt.Errorf("%w: dial %s: %w", ErrDeviceUnreachable, t.address, err)
	}

	t.conn = conn
	t.connected = true
	t.lastActivity.Store(time.Now().Unix())
	return nil
}

// Send encrypts and frames the payload as a CONTROL command, writes it and
// waits for the device acknowledgement.
//
// On any I/O failure the connection is torn down so the caller can decide
// whether to reconnect.
func (t *TCPTransport) Send(ctx context.Context, payload []byte) error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	if !t.connected || t.conn == nil {
		return ErrNotConnected
	}

	body, err := buildControlBody(t.version, t.localKey, payload)
	if err != nil {
		t.errorsTotal.Add(1)
		return err
	}
	frame := EncodeFrame(t.seq.Add(1), CmdControl, body)

	deadline := func(d time.Duration) time.Time {
		at := time.Now().Add(d)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(at) {
			at = ctxDeadline
		}
		return at
	}

	if err := t.conn.SetWriteDeadline(deadline(t.writeTimeout)); err != nil {
		return t.failLocked(fmt.Errorf("set write deadline: %w", err))
	}
	if _, err := t.conn.Write(frame); err != nil {
		return t.failLocked(fmt.Errorf("write: %w", err))
	}
	t.framesTx.Add(1)

	if err := t.conn.SetReadDeadline(deadline(t.readTimeout)); err != nil {
		return t.failLocked(fmt.Errorf("set read deadline: %w", err))
	}
	resp, err := readFrame(t.conn)
	if err != nil {
		return t.failLocked(fmt.Errorf("read response: %w", err))
	}
	t.framesRx.Add(1)
	t.lastActivity.Store(time.Now().Unix())

	if code := resp.ReturnCode(); code != 0 {
		t.errorsTotal.Add(1)
		return fmt.Errorf("%w: return code %d", ErrDeviceRejected, code)
	}
	return nil
}

// failLocked records an I/O error and closes the connection.
// Caller must hold connMu.
func (t *TCPTransport) failLocked(err error) error {
	t.errorsTotal.Add(1)
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.connected = false
	return fmt.Errorf("%w: %w", ErrConnectionLost, err)
}

// IsConnected reports the current connection state.
func (t *TCPTransport) IsConnected() bool {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	return t.connected
}

// Close tears down the connection. Safe to call repeatedly.
func (t *TCPTransport) Close() error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	if t.conn == nil {
		t.connected = false
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.connected = false
	return err
}

// Stats returns a snapshot of transport statistics.
func (t *TCPTransport) Stats() TransportStats {
	return TransportStats{
		FramesTx:     t.framesTx.Load(),
		FramesRx:     t.framesRx.Load(),
		ErrorsTotal:  t.errorsTotal.Load(),
		LastActivity: time.Unix(t.lastActivity.Load(), 0),
		Connected:    t.IsConnected(),
	}
}

// readFrame reads exactly one frame from r: the fixed header first, then
// the remainder indicated by the length field.
func readFrame(r io.Reader) (Frame, error) {
	header := make([]byte, frameHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, err
	}
	if binary.BigEndian.Uint32(header[0:4]) != framePrefix {
		return Frame{}, fmt.Errorf("%w: bad prefix", ErrInvalidFrame)
	}

	length := binary.BigEndian.Uint32(header[12:16])
	if length < frameTrailerLen || length > maxFrameBody+frameTrailerLen {
		return Frame{}, fmt.Errorf("%w: implausible length field %d", ErrInvalidFrame, length)
	}

	buf := make([]byte, frameHeaderLen+int(length))
	copy(buf, header)
	if _, err := io.ReadFull(r, buf[frameHeaderLen:]); err != nil {
		return Frame{}, err
	}

	return ParseFrame(buf)
}
