// Package bridge decouples colour-command producers from the device link.
//
// Producers (MIDI listeners, host automation parameters, remote MQTT
// commands) run on latency-sensitive threads and must never block on
// network I/O. The bridge gives them a non-blocking Enqueue and moves the
// actual device work onto a single consumer goroutine that owns the
// device session.
//
// # Architecture
//
//	┌──────────┐   ┌──────────┐   ┌──────────┐
//	│ MIDI in  │   │  Params  │   │  Remote  │
//	└────┬─────┘   └────┬─────┘   └────┬─────┘
//	     │   Enqueue    │              │
//	     ▼              ▼              ▼
//	┌─────────────────────────────────────────┐
//	│            Queue (FIFO)                 │
//	│  bounded drop-newest / unbounded        │
//	└───────────────────┬─────────────────────┘
//	                    │ single worker
//	                    ▼
//	┌─────────────────────────────────────────┐
//	│  dedup → Session.Send → history/metrics │
//	└─────────────────────────────────────────┘
//
// # Key Responsibilities
//
//   - Accept commands without blocking the producer; a full bounded queue
//     drops the newest command and counts it, never an error.
//   - Preserve first-in-first-out order of accepted commands.
//   - Skip commands whose colour matches the last applied colour. The
//     immediate flag does not participate in the comparison.
//   - Keep running when sends fail; a failed command is logged, counted
//     and dropped, never retried by the bridge (the session already
//     retried once).
//
// # Concurrency
//
// Exactly one worker goroutine dequeues and talks to the session, so the
// session never needs internal locking. Enqueue is safe from any
// goroutine. Start and Stop follow the usual done-channel and WaitGroup
// pattern; Stop is idempotent, waits for at most the in-flight send and
// abandons whatever is still queued.
//
// The bridge connects the session once at Start. If that connect fails
// the bridge stays up but inert: commands are still accepted and drained
// so producers never block, they just go nowhere until the process is
// restarted against a reachable device.
package bridge
