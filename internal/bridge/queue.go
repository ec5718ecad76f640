package bridge

import "sync"

// DefaultQueueCapacity is the bounded queue capacity when none is
// configured. Colour sweeps from a mod wheel arrive far faster than a
// bulb can apply them, so a shallow queue keeps latency visible instead
// of letting a backlog grow.
const DefaultQueueCapacity = 100

// Queue buffers colour commands between producers and the worker.
//
// Enqueue must never block. Dequeue blocks until a command is available
// or done is closed.
type Queue interface {
	// Enqueue offers a command to the queue. Returns false if the queue
	// is full and the command was dropped.
	Enqueue(cmd Command) bool

	// Dequeue removes the oldest command. Returns ok=false once done
	// has closed; buffered commands are abandoned at that point.
	Dequeue(done <-chan struct{}) (cmd Command, ok bool)

	// Len reports the number of buffered commands.
	Len() int
}

// DropNewestQueue is a fixed-capacity FIFO that rejects new commands
// when full. The producer learns about the drop from Enqueue's return
// value and nothing else; a full queue is normal operation under a fast
// producer, not an error.
type DropNewestQueue struct {
	ch chan Command
}

// Ensure both queues implement Queue.
var (
	_ Queue = (*DropNewestQueue)(nil)
	_ Queue = (*UnboundedQueue)(nil)
)

// NewDropNewestQueue creates a bounded queue with the given capacity.
func NewDropNewestQueue(capacity int) (*DropNewestQueue, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &DropNewestQueue{ch: make(chan Command, capacity)}, nil
}

// Enqueue offers cmd without blocking. Returns false when full.
func (q *DropNewestQueue) Enqueue(cmd Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		return false
	}
}

// Dequeue blocks for the next command or until done closes. Once done
// has closed the backlog is abandoned: shutdown must not feed a slow
// device whatever piled up beforehand.
func (q *DropNewestQueue) Dequeue(done <-chan struct{}) (Command, bool) {
	// Checked first so a closed done wins over a non-empty buffer.
	select {
	case <-done:
		return Command{}, false
	default:
	}

	select {
	case cmd := <-q.ch:
		return cmd, true
	case <-done:
		return Command{}, false
	}
}

// Len reports the number of buffered commands.
func (q *DropNewestQueue) Len() int {
	return len(q.ch)
}

// UnboundedQueue accepts every command; memory is the only limit. Meant
// for producers that are naturally rate-limited, such as remote command
// topics.
type UnboundedQueue struct {
	mu    sync.Mutex
	items []Command

	// signal wakes a blocked Dequeue. Capacity 1 is enough: the waiter
	// rechecks items after every wake.
	signal chan struct{}
}

// NewUnboundedQueue creates an unbounded queue.
func NewUnboundedQueue() *UnboundedQueue {
	return &UnboundedQueue{signal: make(chan struct{}, 1)}
}

// Enqueue appends cmd. Always returns true.
func (q *UnboundedQueue) Enqueue(cmd Command) bool {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Dequeue blocks for the next command or until done closes. Once done
// has closed the backlog is abandoned, same as the bounded queue.
func (q *UnboundedQueue) Dequeue(done <-chan struct{}) (Command, bool) {
	for {
		select {
		case <-done:
			return Command{}, false
		default:
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return cmd, true
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-done:
			return Command{}, false
		}
	}
}

// Len reports the number of buffered commands.
func (q *UnboundedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
