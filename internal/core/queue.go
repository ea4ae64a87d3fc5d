package core

import "sync"

// Queue is a thread-safe FIFO of text lines. It is the only primitive
// through which concurrent components of the relay exchange data: sessions,
// rooms and the ledger never read each other's state directly.
//
// Push never blocks; Pop suspends the caller until a line is available or
// the queue is closed. Order is FIFO across all producers.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lines  []string
	closed bool
}

// NewQueue constructs an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a line. It never blocks and is a no-op on a closed queue.
func (q *Queue) Push(line string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.lines = append(q.lines, line)
	q.cond.Signal()
}

// Pop removes and returns the oldest line, blocking until one is available.
// It returns ok=false once the queue is closed and fully drained.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.lines) == 0 {
		if q.closed {
			return "", false
		}
		q.cond.Wait()
	}
	line := q.lines[0]
	q.lines = q.lines[1:]
	return line, true
}

// Len returns the number of queued lines.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}

// Empty reports whether no lines are queued.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Drain removes and returns every queued line. Used to flush on teardown.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	lines := q.lines
	q.lines = nil
	return lines
}

// Close marks the queue closed and wakes every blocked consumer. Pending
// lines remain poppable until drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
