package protocol

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Epoch2020 is the device time epoch: 2020-01-01T00:00:00 UTC as Unix seconds.
const Epoch2020 = 1577836800

// AuthPayloadSize is the fixed size of the 0x01 handshake payload.
const AuthPayloadSize = 9

// DefaultAuthPayload is a captured handshake payload accepted by TP902 and
// TP904 firmware. The real generator is table-driven and randomized per
// connection; its tables are undocumented, so callers wanting replay
// resistance must supply their own generator.
var DefaultAuthPayload = [AuthPayloadSize]byte{0x99, 0xa8, 0x89, 0x3c, 0x66, 0x81, 0x75, 0x0d, 0xe3}

// BuildAuth constructs the 0x01 handshake frame from a 9-byte payload.
func BuildAuth(payload []byte) ([]byte, error) {
	if len(payload) != AuthPayloadSize {
		return nil, &LengthError{Opcode: OpAuth, Got: len(payload), Want: AuthPayloadSize}
	}
	return Encode(OpAuth, payload)
}

// BuildSetUnits constructs the 0x20 display units frame.
func BuildSetUnits(units Units) ([]byte, error) {
	if units != UnitsCelsius && units != UnitsFahrenheit {
		return nil, fmt.Errorf("invalid units byte 0x%02x", byte(units))
	}
	return Encode(OpSetUnits, []byte{byte(units)})
}

// AlarmSoundPayload is the one-byte 0x21 payload: on/off in the shared
// units-style encoding.
func AlarmSoundPayload(enabled bool) []byte {
	if enabled {
		return []byte{valueOn}
	}
	return []byte{valueOff}
}

// BuildSetAlarmSound constructs the 0x21 audible alarm on/off frame.
func BuildSetAlarmSound(enabled bool) ([]byte, error) {
	return Encode(OpSetAlarmSound, AlarmSoundPayload(enabled))
}

// SetAlarmPayload renders the 6-byte 0x23 payload: channel, mode, primary
// temp, secondary temp. Off mode writes the absent sentinel for both
// temperatures; Target mode zeroes the secondary, matching what the stock
// app sends.
func SetAlarmPayload(cfg AlarmConfig) ([]byte, error) {
	payload := make([]byte, 0, 6)
	payload = append(payload, cfg.Channel, byte(cfg.Mode))

	switch cfg.Mode {
	case AlarmOff:
		payload = append(payload, 0xFF, 0xFF, 0xFF, 0xFF)
	case AlarmTarget:
		primary, err := EncodeTemperature(cfg.Primary)
		if err != nil {
			return nil, fmt.Errorf("alarm target temp: %w", err)
		}
		payload = append(payload, primary[0], primary[1], 0x00, 0x00)
	case AlarmRange:
		primary, err := EncodeTemperature(cfg.Primary)
		if err != nil {
			return nil, fmt.Errorf("alarm high temp: %w", err)
		}
		secondary, err := EncodeTemperature(cfg.Secondary)
		if err != nil {
			return nil, fmt.Errorf("alarm low temp: %w", err)
		}
		payload = append(payload, primary[0], primary[1], secondary[0], secondary[1])
	default:
		return nil, fmt.Errorf("invalid alarm mode 0x%02x", byte(cfg.Mode))
	}
	return payload, nil
}

// BuildSetAlarm constructs the complete 0x23 alarm configuration frame.
func BuildSetAlarm(cfg AlarmConfig) ([]byte, error) {
	payload, err := SetAlarmPayload(cfg)
	if err != nil {
		return nil, err
	}
	return Encode(OpSetAlarm, payload)
}

// BuildGetAlarm constructs the 0x24 alarm config request for a channel.
// Channel range checking against the model's probe count happens in the
// device facade before this is called.
func BuildGetAlarm(channel uint8) ([]byte, error) {
	return Encode(OpGetAlarm, []byte{channel})
}

// BuildGetStatus constructs the 0x26 status request.
func BuildGetStatus() ([]byte, error) {
	return Encode(OpGetStatus, nil)
}

// BuildGetFirmware constructs the 0x41 firmware version request.
func BuildGetFirmware() ([]byte, error) {
	return Encode(OpFirmware, nil)
}

// BuildBacklight constructs the 0x02 frame that lights the LCD like a
// button press.
func BuildBacklight() ([]byte, error) {
	return Encode(OpBacklight, nil)
}

// BuildSnooze constructs the 0x27 frame silencing a beeping alarm until its
// next trigger.
func BuildSnooze() ([]byte, error) {
	return Encode(OpSnooze, nil)
}

// TimeSyncPayload renders seconds since the 2020 epoch as the 4-byte
// little-endian 0x28 payload.
func TimeSyncPayload(secondsSince2020 uint32) []byte {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, secondsSince2020)
	return payload
}

// BuildTimeSync constructs the complete 0x28 time sync frame.
func BuildTimeSync(secondsSince2020 uint32) ([]byte, error) {
	return Encode(OpTimeSync, TimeSyncPayload(secondsSince2020))
}

// BuildTimeSyncAt constructs the 0x28 frame for a wall-clock instant.
// Instants before the 2020 epoch clamp to zero.
func BuildTimeSyncAt(t time.Time) ([]byte, error) {
	secs := t.Unix() - Epoch2020
	if secs < 0 {
		secs = 0
	}
	return BuildTimeSync(uint32(secs))
}
