package protocol

import (
	"fmt"
)

const (
	// MinFrameSize is the smallest valid frame: opcode + length + checksum.
	MinFrameSize = 3

	// MaxPayloadSize is the largest payload the one-byte length field can carry.
	MaxPayloadSize = 255
)

// Frame is a single TP90x wire frame:
//
//	[0]    opcode
//	[1]    payload length
//	[2..]  payload
//	[2+N]  checksum = (opcode + length + sum(payload)) & 0xFF
//
// BLE notifications are commonly padded to a fixed size (20 bytes); bytes
// beyond the checksum are ignored when decoding.
type Frame struct {
	Opcode  byte
	Payload []byte
	Raw     []byte // Original bytes as received, including any padding
}

// Checksum computes the low byte of the sum of opcode, length and payload
// bytes. The sum is accumulated in a uint32 and masked once at the end.
func Checksum(opcode byte, payload []byte) byte {
	sum := uint32(opcode) + uint32(len(payload))
	for _, b := range payload {
		sum += uint32(b)
	}
	return byte(sum & 0xFF)
}

// Encode builds a complete frame ready to write to the GATT characteristic.
// Returns ErrPayloadTooLarge if the payload cannot fit the length field.
func Encode(opcode byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	frame := make([]byte, 0, 3+len(payload))
	frame = append(frame, opcode, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, Checksum(opcode, payload))
	return frame, nil
}

// Decode parses raw notification bytes into a Frame. It never panics on
// arbitrary input: it returns ErrTooShort when the buffer cannot hold the
// declared payload plus checksum, and a ChecksumError when the trailing byte
// does not match. Padding past the checksum is ignored.
func Decode(data []byte) (*Frame, error) {
	if len(data) < MinFrameSize {
		return nil, fmt.Errorf("%w: %d bytes (minimum %d)", ErrTooShort, len(data), MinFrameSize)
	}

	payloadLen := int(data[1])
	if len(data) < 2+payloadLen+1 {
		return nil, fmt.Errorf("%w: %d bytes for declared payload of %d", ErrTooShort, len(data), payloadLen)
	}

	want := Checksum(data[0], data[2:2+payloadLen])
	got := data[2+payloadLen]
	if got != want {
		return nil, &ChecksumError{Got: got, Want: want}
	}

	return &Frame{
		Opcode:  data[0],
		Payload: data[2 : 2+payloadLen],
		Raw:     data,
	}, nil
}

// String returns a debug representation of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{opcode=0x%02x, payload=% x}", f.Opcode, f.Payload)
}
