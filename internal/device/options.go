package device

import (
	"time"

	"github.com/muurk/tp90x/internal/protocol"
)

const (
	// DefaultRequestTimeout is the reply window for solicited exchanges.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultAckGrace is how long unacknowledged writes wait for a reply
	// before silence is treated as success. The firmware sends no confirmed
	// response for 0x20, 0x21, 0x23, 0x27, 0x28 and 0x02.
	DefaultAckGrace = 500 * time.Millisecond
)

// AuthPayloadFunc produces the 9-byte 0x01 handshake payload.
//
// The real scheme is table-driven and randomized per connection, but the
// table contents are undocumented; the default replays a captured payload
// the firmware accepts. Callers needing replay resistance plug in their own
// generator here.
type AuthPayloadFunc func() []byte

// Option adjusts Device behavior.
type Option func(*Device)

// WithRequestTimeout sets the reply window for solicited exchanges.
func WithRequestTimeout(d time.Duration) Option {
	return func(dev *Device) {
		if d > 0 {
			dev.requestTimeout = d
		}
	}
}

// WithAckGrace sets how long unacknowledged writes wait before silence
// counts as success.
func WithAckGrace(d time.Duration) Option {
	return func(dev *Device) {
		if d > 0 {
			dev.ackGrace = d
		}
	}
}

// WithAuthPayload replaces the default captured handshake payload generator.
func WithAuthPayload(fn AuthPayloadFunc) Option {
	return func(dev *Device) {
		if fn != nil {
			dev.authPayload = fn
		}
	}
}

func defaultAuthPayload() []byte {
	payload := protocol.DefaultAuthPayload
	return payload[:]
}
