package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for frame and payload decoding. Callers match with errors.Is.
var (
	// ErrTooShort indicates the buffer cannot hold a complete frame.
	ErrTooShort = errors.New("frame too short")

	// ErrPayloadTooLarge indicates an outbound payload exceeds the one-byte length field.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrChecksumMismatch indicates the trailing checksum byte does not match.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidBCD indicates a temperature byte contains a nibble above 9.
	ErrInvalidBCD = errors.New("invalid BCD digit")

	// ErrTemperatureRange indicates a temperature cannot be represented in two BCD bytes.
	ErrTemperatureRange = errors.New("temperature out of encodable range")

	// ErrUnknownOpcode indicates the opcode has no catalog entry. Inbound
	// handling treats this as informational, not fatal: undocumented opcodes
	// are expected in the wild and decode to RawMessage.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrDirection indicates an attempt to send an inbound-only opcode or
	// decode an outbound-only one.
	ErrDirection = errors.New("opcode not valid for direction")
)

// ChecksumError reports a checksum mismatch with both values for logging.
type ChecksumError struct {
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: got 0x%02x, want 0x%02x", e.Got, e.Want)
}

// Is makes ChecksumError match ErrChecksumMismatch via errors.Is.
func (e *ChecksumError) Is(target error) bool { return target == ErrChecksumMismatch }

// LengthError reports a known opcode arriving with a payload length the
// catalog does not allow. The session logs and drops these without killing
// the broadcast stream.
type LengthError struct {
	Opcode byte
	Got    int
	Want   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("opcode 0x%02x: unexpected payload length %d (want %d)", e.Opcode, e.Got, e.Want)
}
