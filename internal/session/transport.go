package session

import (
	"context"
	"sync"
)

// Transport is the byte-level connection to a device: a GATT write
// characteristic on the send side and a notify characteristic on the receive
// side. Implementations deliver one notification per Receive call, without
// any framing of their own.
type Transport interface {
	// Send writes one complete frame to the device.
	Send(data []byte) error

	// Receive blocks until the next notification arrives, the context is
	// cancelled, or the transport fails.
	Receive(ctx context.Context) ([]byte, error)

	// Close tears the connection down. Any blocked Receive returns an error.
	Close() error
}

// NotifyQueue bridges a push-based notification callback to the pull-based
// Transport receive contract. Push never blocks the notifying goroutine,
// which matters because BLE stacks deliver notifications on their own event
// thread.
type NotifyQueue struct {
	mu     sync.Mutex
	buf    [][]byte
	closed bool
	sig    chan struct{}
}

// NewNotifyQueue returns an empty, open queue.
func NewNotifyQueue() *NotifyQueue {
	return &NotifyQueue{sig: make(chan struct{}, 1)}
}

// Push appends one notification. Pushes after Stop are dropped.
func (q *NotifyQueue) Push(data []byte) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	q.buf = append(q.buf, buf)
	q.mu.Unlock()

	select {
	case q.sig <- struct{}{}:
	default:
	}
}

// Pop blocks until a notification is available, the context is cancelled, or
// the queue is stopped. Queued notifications drain in order even after Stop.
func (q *NotifyQueue) Pop(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.buf) > 0 {
			data := q.buf[0]
			q.buf = q.buf[1:]
			q.mu.Unlock()
			return data, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, ErrClosed
		}
		select {
		case <-q.sig:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Stop wakes any blocked Pop and rejects further pushes.
func (q *NotifyQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.sig <- struct{}{}:
	default:
	}
}
