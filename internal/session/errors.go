package session

import "errors"

var (
	// ErrTimeout indicates no matching reply arrived within the request
	// window. The pending slot is released; the session stays usable.
	ErrTimeout = errors.New("request timed out")

	// ErrCancelled indicates the session was closed while the request was
	// pending.
	ErrCancelled = errors.New("request cancelled: session closed")

	// ErrNotReady indicates a command was submitted before authentication
	// completed. Only the 0x01 exchange is accepted before Ready.
	ErrNotReady = errors.New("session not ready: authenticate first")

	// ErrClosed indicates the session has already disconnected.
	ErrClosed = errors.New("session closed")

	// ErrTransport wraps a failure propagated from the underlying transport.
	// Fatal to the session.
	ErrTransport = errors.New("transport error")
)
