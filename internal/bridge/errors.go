package bridge

import "errors"

// Domain errors for the bridge package.
var (
	// ErrQueueRequired is returned when a bridge is created without a queue.
	ErrQueueRequired = errors.New("bridge: queue is required")

	// ErrSessionRequired is returned when a bridge is created without a
	// device session.
	ErrSessionRequired = errors.New("bridge: session is required")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("bridge: already started")

	// ErrInvalidCapacity is returned for a non-positive bounded queue
	// capacity.
	ErrInvalidCapacity = errors.New("bridge: queue capacity must be positive")
)
