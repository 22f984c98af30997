package supervisor

import "sync"

// CommandQueue is a FIFO of pending stdin lines. Producers are caller-facing
// operations; the single consumer is the stdin pump, which batch-drains so no
// lock is held while it performs blocking pipe writes.
type CommandQueue struct {
	mu      sync.Mutex
	pending []string
	wake    chan struct{}
}

// NewCommandQueue constructs an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{wake: make(chan struct{}, 1)}
}

// Enqueue appends one line to the tail and nudges the consumer.
func (q *CommandQueue) Enqueue(line string) {
	q.mu.Lock()
	q.pending = append(q.pending, line)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// DrainAll atomically removes and returns every queued line in FIFO order,
// leaving the queue empty.
func (q *CommandQueue) DrainAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of queued lines.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wake returns the channel the consumer blocks on between drains. It carries
// at most one pending notification; a drain after wake-up always observes
// everything enqueued before the notification was sent.
func (q *CommandQueue) Wake() <-chan struct{} {
	return q.wake
}
