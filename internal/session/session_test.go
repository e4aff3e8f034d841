package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muurk/tp90x/internal/protocol"
)

// fakeTransport is a loopback transport: frames the session sends appear on
// the sent channel, and tests push device notifications through the queue.
type fakeTransport struct {
	sent   chan []byte
	notify *NotifyQueue
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent:   make(chan []byte, 16),
		notify: NewNotifyQueue(),
	}
}

func (f *fakeTransport) Send(data []byte) error {
	f.sent <- data
	return nil
}

func (f *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	return f.notify.Pop(ctx)
}

func (f *fakeTransport) Close() error {
	f.notify.Stop()
	return nil
}

func mustEncode(t *testing.T, opcode byte, payload []byte) []byte {
	t.Helper()
	frame, err := protocol.Encode(opcode, payload)
	if err != nil {
		t.Fatalf("Encode(0x%02x) error = %v", opcode, err)
	}
	return frame
}

// replyOnce pushes a canned notification as soon as the session sends a frame.
func replyOnce(ft *fakeTransport, reply []byte) {
	go func() {
		<-ft.sent
		ft.notify.Push(reply)
	}()
}

func authenticate(t *testing.T, s *Session, ft *fakeTransport) {
	t.Helper()
	replyOnce(ft, mustEncode(t, protocol.OpAuth, []byte{0x02, 0x06}))
	if _, err := s.Submit(context.Background(), protocol.OpAuth, protocol.DefaultAuthPayload[:], time.Second); err != nil {
		t.Fatalf("auth Submit() error = %v", err)
	}
	if got := s.State(); got != StateReady {
		t.Fatalf("state after auth = %v, want ready", got)
	}
}

func TestAuthGating(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	defer s.Close()

	if got := s.State(); got != StateConnected {
		t.Fatalf("initial state = %v, want connected", got)
	}

	// Arbitrary commands are rejected before the handshake completes.
	if _, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, 50*time.Millisecond); !errors.Is(err, ErrNotReady) {
		t.Fatalf("pre-auth Submit() error = %v, want ErrNotReady", err)
	}

	authenticate(t, s, ft)

	replyOnce(ft, mustEncode(t, protocol.OpGetStatus, []byte{0x0c, 0x0c, 0x32, 0x00, 0x00}))
	msg, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, time.Second)
	if err != nil {
		t.Fatalf("post-auth Submit() error = %v", err)
	}
	if _, ok := msg.(*protocol.DeviceStatus); !ok {
		t.Errorf("reply type = %T, want *DeviceStatus", msg)
	}
}

func TestCorrelationWithInterleavedBroadcast(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	defer s.Close()
	authenticate(t, s, ft)

	broadcast := make([]byte, 15)
	broadcast[0] = 0x32 // battery
	broadcast[1] = 0x0c // celsius
	for i := 3; i < 15; i++ {
		broadcast[i] = 0xff
	}

	// The device streams a broadcast before answering the status request.
	go func() {
		<-ft.sent
		ft.notify.Push(mustEncode(t, protocol.OpBroadcast, broadcast))
		ft.notify.Push(mustEncode(t, protocol.OpGetStatus, []byte{0x0f, 0x0f, 0x55, 0x00, 0x00}))
	}()

	msg, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, time.Second)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	status, ok := msg.(*protocol.DeviceStatus)
	if !ok {
		t.Fatalf("reply type = %T, want *DeviceStatus", msg)
	}
	if status.Units != protocol.UnitsFahrenheit || status.Battery != 0x55 {
		t.Errorf("status = %v, want F/85%%", status)
	}

	// The interleaved broadcast still arrives on the stream, undamaged.
	select {
	case bmsg := <-s.Broadcasts():
		bc, ok := bmsg.(*protocol.Broadcast)
		if !ok {
			t.Fatalf("broadcast type = %T, want *Broadcast", bmsg)
		}
		if bc.Battery != 0x32 {
			t.Errorf("broadcast battery = %d, want 50", bc.Battery)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never delivered")
	}
}

func TestTimeoutReleasesSlot(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	defer s.Close()
	authenticate(t, s, ft)

	if _, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, 50*time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Submit() error = %v, want ErrTimeout", err)
	}
	<-ft.sent // drain the unanswered request

	// The slot is free: the next request completes normally.
	replyOnce(ft, mustEncode(t, protocol.OpGetStatus, []byte{0x0c, 0x0f, 0x64, 0x00, 0x00}))
	if _, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, time.Second); err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
}

func TestCloseCancelsPending(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	authenticate(t, s, ft)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, 10*time.Second)
		errCh <- err
	}()
	<-ft.sent // request is in flight

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("pending Submit() error = %v, want ErrCancelled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pending request never failed")
	}

	if got := s.State(); got != StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}

	// The broadcast stream terminates with the session.
	select {
	case _, open := <-s.Broadcasts():
		if open {
			t.Error("broadcast channel delivered after close, want closed")
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast channel never closed")
	}

	// Further submissions are rejected outright.
	if _, err := s.Submit(context.Background(), protocol.OpGetStatus, nil, time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("post-close Submit() error = %v, want ErrClosed", err)
	}
}

func TestMalformedNotificationAbsorbed(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	defer s.Close()
	authenticate(t, s, ft)

	// Garbage first: truncated frame, then a bad checksum.
	ft.notify.Push([]byte{0x30})
	ft.notify.Push([]byte{0x26, 0x01, 0x0c, 0x00})

	good := make([]byte, 15)
	good[0] = 0x64
	good[1] = 0x0c
	for i := 3; i < 15; i++ {
		good[i] = 0xff
	}
	ft.notify.Push(mustEncode(t, protocol.OpBroadcast, good))

	select {
	case msg := <-s.Broadcasts():
		bc, ok := msg.(*protocol.Broadcast)
		if !ok {
			t.Fatalf("message type = %T, want *Broadcast", msg)
		}
		if bc.Battery != 100 {
			t.Errorf("battery = %d, want 100", bc.Battery)
		}
	case <-time.After(time.Second):
		t.Fatal("stream died on malformed input")
	}
}

func TestBroadcastOrdering(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 2)
	defer s.Close()
	authenticate(t, s, ft)

	for _, battery := range []byte{10, 20, 30} {
		payload := []byte{battery, 0x0c, 0x00, 0xff, 0xff, 0xff, 0xff}
		ft.notify.Push(mustEncode(t, protocol.OpBroadcast, payload))
	}

	for _, want := range []byte{10, 20, 30} {
		select {
		case msg := <-s.Broadcasts():
			bc, ok := msg.(*protocol.Broadcast)
			if !ok {
				t.Fatalf("message type = %T, want *Broadcast", msg)
			}
			if bc.Battery != want {
				t.Fatalf("battery = %d, want %d (out of order)", bc.Battery, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("broadcast %d never delivered", want)
		}
	}
}

func TestUnknownOpcodeOnStream(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	defer s.Close()
	authenticate(t, s, ft)

	ft.notify.Push(mustEncode(t, 0x99, []byte{0xde, 0xad}))

	select {
	case msg := <-s.Broadcasts():
		raw, ok := msg.(*protocol.RawMessage)
		if !ok {
			t.Fatalf("message type = %T, want *RawMessage", msg)
		}
		if raw.Opcode() != 0x99 {
			t.Errorf("opcode = 0x%02x, want 0x99", raw.Opcode())
		}
	case <-time.After(time.Second):
		t.Fatal("unknown-opcode frame never delivered")
	}
}

func TestFireAndForgetSend(t *testing.T) {
	ft := newFakeTransport()
	s := New(ft, 6)
	defer s.Close()
	authenticate(t, s, ft)

	if err := s.Send(protocol.OpSnooze, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case frame := <-ft.sent:
		if frame[0] != protocol.OpSnooze {
			t.Errorf("sent opcode = 0x%02x, want 0x27", frame[0])
		}
	case <-time.After(time.Second):
		t.Fatal("frame never sent")
	}
}
