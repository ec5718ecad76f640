package bridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/micaww/light-vst/internal/tuya"
)

// Command sources, recorded for history and telemetry.
const (
	SourceMIDI   = "midi"
	SourceParam  = "param"
	SourceRemote = "mqtt"
)

// defaultSendTimeout bounds a single worker send, including the
// session's internal reconnect-and-retry cycle.
const defaultSendTimeout = 15 * time.Second

// Command is one queued colour change with its origin.
type Command struct {
	Color  tuya.ColorCommand
	Source string
}

// Session is the device link the worker drives. Satisfied by
// *tuya.Session; mocked in tests.
//
// The bridge is the session's only caller, so implementations need no
// internal locking.
type Session interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, cmd tuya.ColorCommand) error
	Close() error
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Stats holds bridge counters.
type Stats struct {
	Enqueued uint64
	Dropped  uint64 // Rejected by a full bounded queue
	Deduped  uint64 // Skipped because the colour was already applied
	Applied  uint64
	Failed   uint64 // Sends that failed after the session's retry
	Inert    bool   // True when the startup connect failed
}

// Options configures a bridge.
type Options struct {
	// Queue buffers commands between producers and the worker. Required.
	Queue Queue

	// Session is the device link. Required.
	Session Session

	// Logger is optional; nil disables logging.
	Logger Logger

	// OnApplied is called from the worker goroutine after a command is
	// accepted by the device, with the time the send took. Optional.
	OnApplied func(cmd Command, latency time.Duration)

	// SendTimeout bounds one worker send. Zero means the default.
	SendTimeout time.Duration
}

// Bridge owns the single consumer worker between command producers and
// the device session.
type Bridge struct {
	queue       Queue
	session     Session
	logger      Logger
	onApplied   func(Command, time.Duration)
	sendTimeout time.Duration

	// Last applied colour, worker-only state.
	lastApplied tuya.ColorCommand
	lastSet     bool

	// Shutdown coordination
	started  atomic.Bool
	inert    atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Statistics (atomic for concurrent producers)
	enqueued atomic.Uint64
	dropped  atomic.Uint64
	deduped  atomic.Uint64
	applied  atomic.Uint64
	failed   atomic.Uint64
}

// New creates a bridge. Start must be called before commands flow.
func New(opts Options) (*Bridge, error) {
	if opts.Queue == nil {
		return nil, ErrQueueRequired
	}
	if opts.Session == nil {
		return nil, ErrSessionRequired
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	return &Bridge{
		queue:       opts.Queue,
		session:     opts.Session,
		logger:      opts.Logger,
		onApplied:   opts.OnApplied,
		sendTimeout: opts.SendTimeout,
		done:        make(chan struct{}),
	}, nil
}

// Start connects the session and launches the worker.
//
// A failed connect does not fail Start: the bridge comes up inert,
// accepting and discarding commands so producers never block. Recovery
// from inert requires a restart against a reachable device.
func (b *Bridge) Start(ctx context.Context) error {
	if b.started.Swap(true) {
		return ErrAlreadyStarted
	}

	if err := b.session.Connect(ctx); err != nil {
		b.inert.Store(true)
		b.logWarn("initial device connect failed, bridge is inert", "error", err)
	}

	b.wg.Add(1)
	go b.worker()
	return nil
}

// Enqueue offers a command to the bridge without blocking.
//
// Returns false when a bounded queue is full and the command was
// dropped. Producers may ignore the result; a drop is not an error.
func (b *Bridge) Enqueue(source string, cmd tuya.ColorCommand) bool {
	if !b.queue.Enqueue(Command{Color: cmd, Source: source}) {
		b.dropped.Add(1)
		b.logDebug("queue full, command dropped", "source", source)
		return false
	}
	b.enqueued.Add(1)
	return true
}

// worker is the single consumer: it dequeues, dedups and sends.
func (b *Bridge) worker() {
	defer b.wg.Done()

	for {
		cmd, ok := b.queue.Dequeue(b.done)
		if !ok {
			return
		}

		if b.inert.Load() {
			b.logDebug("inert, discarding command", "source", cmd.Source)
			continue
		}

		if b.lastSet && b.lastApplied.SameColor(cmd.Color) {
			b.deduped.Add(1)
			continue
		}

		// The send deadline is independent of bridge shutdown so an
		// in-flight retry cycle is never cancelled mid-way.
		sendCtx, cancel := context.WithTimeout(context.Background(), b.sendTimeout)
		start := time.Now()
		err := b.session.Send(sendCtx, cmd.Color)
		cancel()

		if err != nil {
			b.failed.Add(1)
			b.logError("send failed, command dropped",
				"source", cmd.Source,
				"hue", cmd.Color.Hue,
				"error", err)
			continue
		}

		b.lastApplied = cmd.Color
		b.lastSet = true
		b.applied.Add(1)

		latency := time.Since(start)
		b.logDebug("colour applied",
			"source", cmd.Source,
			"hue", cmd.Color.Hue,
			"saturation", cmd.Color.Saturation,
			"brightness", cmd.Color.Brightness,
			"latency_ms", latency.Milliseconds())

		if b.onApplied != nil {
			b.onApplied(cmd, latency)
		}
	}
}

// Stop shuts the worker down and closes the session. Idempotent.
//
// A command already handed to the session finishes its send; everything
// still queued is abandoned so Stop returns promptly even with a slow
// device and a deep backlog.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()
		if err := b.session.Close(); err != nil {
			b.logWarn("session close failed", "error", err)
		}
		b.logInfo("bridge stopped",
			"applied", b.applied.Load(),
			"deduped", b.deduped.Load(),
			"dropped", b.dropped.Load(),
			"failed", b.failed.Load())
	})
}

// Inert reports whether the startup connect failed.
func (b *Bridge) Inert() bool {
	return b.inert.Load()
}

// Stats returns a snapshot of bridge counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Enqueued: b.enqueued.Load(),
		Dropped:  b.dropped.Load(),
		Deduped:  b.deduped.Load(),
		Applied:  b.applied.Load(),
		Failed:   b.failed.Load(),
		Inert:    b.inert.Load(),
	}
}

func (b *Bridge) logDebug(msg string, kv ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, kv...)
	}
}

func (b *Bridge) logInfo(msg string, kv ...any) {
	if b.logger != nil {
		b.logger.Info(msg, kv...)
	}
}

func (b *Bridge) logWarn(msg string, kv ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, kv...)
	}
}

func (b *Bridge) logError(msg string, kv ...any) {
	if b.logger != nil {
		b.logger.Error(msg, kv...)
	}
}
