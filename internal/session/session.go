package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tp90x/internal/logging"
	"github.com/muurk/tp90x/internal/protocol"
)

// State is the connection lifecycle position. Only Ready accepts arbitrary
// commands; Authenticating accepts the 0x01 exchange alone.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateAuthenticating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultTimeout is the per-request reply window when the caller passes zero.
const DefaultTimeout = 5 * time.Second

type result struct {
	msg protocol.Message
	err error
}

type pending struct {
	opcode byte
	done   chan result // capacity 1, written once by the receive path
}

// Session owns one transport connection and multiplexes its inbound frames
// into solicited replies and unsolicited broadcasts.
//
// The protocol is half-duplex on the request side: at most one request is in
// flight, enforced by serializing Submit callers. Broadcasts arrive on the
// device's own schedule and are routed to an unbounded ordered queue so the
// receive path never stalls behind a slow consumer or a blocked caller.
type Session struct {
	transport Transport
	probes    int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	reqMu sync.Mutex // serializes submitters: one in-flight request

	mu      sync.Mutex // guards state, pending, queue
	state   State
	pending *pending
	queue   []protocol.Message
	closed  bool

	queueSig   chan struct{}
	broadcasts chan protocol.Message

	closeOnce sync.Once
	closeErr  error
}

// New wraps a connected transport and starts the receive and delivery loops.
// probes is the model's probe count, used to validate broadcast and snapshot
// payload lengths.
func New(t Transport, probes int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		transport:  t,
		probes:     probes,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		state:      StateConnected,
		queueSig:   make(chan struct{}, 1),
		broadcasts: make(chan protocol.Message),
	}
	go s.receiveLoop()
	go s.deliverLoop()
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Broadcasts returns the unsolicited message stream: decoded temperature
// broadcasts plus raw frames for unclassified opcodes, in arrival order.
// The channel closes when the session disconnects and is not restartable.
func (s *Session) Broadcasts() <-chan protocol.Message {
	return s.broadcasts
}

// Submit sends one request and blocks until the matching reply arrives, the
// timeout elapses, the context is cancelled, or the session closes. The
// reply is matched by opcode: the first inbound frame with the request's
// opcode completes it, regardless of how many broadcasts interleave.
//
// A zero timeout means DefaultTimeout. On ErrTimeout the slot is released
// and the session remains usable; retries are the caller's decision.
func (s *Session) Submit(ctx context.Context, opcode byte, payload []byte, timeout time.Duration) (protocol.Message, error) {
	if err := protocol.ValidateOutbound(opcode, payload); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s.reqMu.Lock()
	defer s.reqMu.Unlock()

	p := &pending{opcode: opcode, done: make(chan result, 1)}

	s.mu.Lock()
	if err := s.checkStateLocked(opcode); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if opcode == protocol.OpAuth {
		s.state = StateAuthenticating
	}
	s.pending = p
	s.mu.Unlock()

	frame, err := protocol.Encode(opcode, payload)
	if err != nil {
		s.clearPending(p)
		return nil, err
	}

	logging.LogFrame("send", opcode, frame)
	if err := s.transport.Send(frame); err != nil {
		s.clearPending(p)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-p.done:
		return s.finishRequest(opcode, res)
	case <-timer.C:
		s.clearPending(p)
		// The reply may have landed between the timer firing and the slot
		// being cleared; prefer it over the timeout.
		select {
		case res := <-p.done:
			return s.finishRequest(opcode, res)
		default:
		}
		return nil, ErrTimeout
	case <-ctx.Done():
		s.clearPending(p)
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrCancelled
	}
}

// Send writes a fire-and-forget command with no reply correlation. Callers
// that want the ack-grace contract use Submit and map ErrTimeout to success.
func (s *Session) Send(opcode byte, payload []byte) error {
	if err := protocol.ValidateOutbound(opcode, payload); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.checkStateLocked(opcode); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	frame, err := protocol.Encode(opcode, payload)
	if err != nil {
		return err
	}
	if err := s.transport.Send(frame); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Close disconnects the session: the pending request (if any) fails with
// ErrCancelled, the broadcast channel drains and closes, and the transport
// is closed. Safe to call more than once.
func (s *Session) Close() error {
	s.shutdown(ErrCancelled)
	return s.closeErr
}

func (s *Session) checkStateLocked(opcode byte) error {
	if s.state == StateDisconnected {
		return ErrClosed
	}
	if opcode == protocol.OpAuth {
		return nil // the handshake is valid in every connected state
	}
	if s.state != StateReady {
		return ErrNotReady
	}
	return nil
}

func (s *Session) finishRequest(opcode byte, res result) (protocol.Message, error) {
	if res.err != nil {
		return nil, res.err
	}
	if opcode == protocol.OpAuth {
		s.mu.Lock()
		if s.state == StateAuthenticating {
			s.state = StateReady
		}
		s.mu.Unlock()
	}
	return res.msg, nil
}

func (s *Session) clearPending(p *pending) {
	s.mu.Lock()
	if s.pending == p {
		s.pending = nil
	}
	s.mu.Unlock()
}

// receiveLoop is the single reader of the transport. It classifies every
// inbound frame as either the pending request's reply or broadcast traffic.
// Malformed frames are logged and absorbed so one bad notification cannot
// kill the temperature stream.
func (s *Session) receiveLoop() {
	for {
		data, err := s.transport.Receive(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return // shutting down
			}
			logging.Warn("transport receive failed", zap.Error(err))
			s.shutdown(fmt.Errorf("%w: %v", ErrTransport, err))
			return
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			logging.Warn("dropping malformed notification",
				zap.Error(err),
				zap.String("raw", fmt.Sprintf("% x", data)),
			)
			continue
		}
		logging.LogFrame("recv", frame.Opcode, data)
		s.dispatch(frame)
	}
}

func (s *Session) dispatch(frame *protocol.Frame) {
	s.mu.Lock()
	p := s.pending
	if p != nil && frame.Opcode == p.opcode {
		s.pending = nil
		s.mu.Unlock()

		msg, err := protocol.DecodeMessage(frame, s.probes)
		if err != nil {
			// A reply-shaped frame that fails catalog validation is this
			// request's failure, not stream noise.
			p.done <- result{err: err}
			return
		}
		p.done <- result{msg: msg}
		return
	}
	s.mu.Unlock()

	msg, err := protocol.DecodeMessage(frame, s.probes)
	if err != nil {
		logging.Warn("dropping broadcast with unexpected shape",
			zap.String("opcode", fmt.Sprintf("0x%02x", frame.Opcode)),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, msg)
	s.mu.Unlock()

	select {
	case s.queueSig <- struct{}{}:
	default:
	}
}

// deliverLoop drains the unbounded broadcast queue into the outward channel,
// preserving order. Only this goroutine blocks on slow consumers.
func (s *Session) deliverLoop() {
	for {
		s.mu.Lock()
		var msg protocol.Message
		if len(s.queue) > 0 {
			msg = s.queue[0]
			s.queue = s.queue[1:]
		}
		closed := s.closed
		s.mu.Unlock()

		if msg != nil {
			select {
			case s.broadcasts <- msg:
				continue
			case <-s.done:
				close(s.broadcasts)
				return
			}
		}
		if closed {
			close(s.broadcasts)
			return
		}
		select {
		case <-s.queueSig:
		case <-s.done:
			close(s.broadcasts)
			return
		}
	}
}

func (s *Session) shutdown(cause error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateDisconnected
		s.closed = true
		p := s.pending
		s.pending = nil
		s.mu.Unlock()

		if p != nil {
			p.done <- result{err: cause}
		}
		s.cancel()
		s.closeErr = s.transport.Close()
		close(s.done)
		logging.Debug("session closed", zap.Error(cause))
	})
}
