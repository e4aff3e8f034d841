package protocol

import (
	"fmt"
)

// Direction flags for a catalog entry.
type Direction uint8

const (
	DirOutbound Direction = 1 << iota
	DirInbound
)

// anyLength marks an entry whose inbound payload length is not enforced.
const anyLength = -1

// Descriptor is one immutable command catalog entry: the opcode, which
// directions it travels, the payload lengths each direction expects, and the
// payload decoder for inbound frames. Broadcast and snapshot lengths depend
// on the model's probe count, so inbound lengths are functions of it.
type Descriptor struct {
	Opcode     byte
	Name       string
	Directions Direction

	// OutLen is the required outbound payload length; meaningful only when
	// DirOutbound is set.
	OutLen int

	inLen  func(probes int) int
	decode func(payload []byte, probes int) (Message, error)
}

// catalog is built once at init and never mutated, so it is safe to share
// across goroutines without synchronization.
var catalog = buildCatalog()

func fixedLen(n int) func(int) int { return func(int) int { return n } }

func buildCatalog() map[byte]*Descriptor {
	entries := []*Descriptor{
		{
			Opcode: OpAuth, Name: "auth",
			Directions: DirOutbound | DirInbound,
			OutLen:     9,
			inLen:      fixedLen(2),
			decode:     decodeAuth,
		},
		{
			Opcode: OpBacklight, Name: "backlight",
			Directions: DirOutbound | DirInbound,
			OutLen:     0,
			inLen:      fixedLen(anyLength),
		},
		{
			Opcode: OpSetUnits, Name: "set_units",
			Directions: DirOutbound,
			OutLen:     1,
		},
		{
			Opcode: OpSetAlarmSound, Name: "set_alarm_sound",
			Directions: DirOutbound,
			OutLen:     1,
		},
		{
			Opcode: OpSetAlarm, Name: "set_alarm",
			Directions: DirOutbound,
			OutLen:     6,
		},
		{
			Opcode: OpGetAlarm, Name: "alarm_config",
			Directions: DirOutbound | DirInbound,
			OutLen:     1,
			inLen:      fixedLen(6),
			decode:     decodeAlarmConfig,
		},
		{
			Opcode: OpSnapshot, Name: "snapshot",
			Directions: DirInbound,
			inLen:      func(probes int) int { return 2 + 2*probes },
			decode:     decodeSnapshot,
		},
		{
			Opcode: OpGetStatus, Name: "status",
			Directions: DirOutbound | DirInbound,
			OutLen:     0,
			inLen:      fixedLen(5),
			decode:     decodeStatus,
		},
		{
			Opcode: OpSnooze, Name: "snooze",
			Directions: DirOutbound,
			OutLen:     0,
		},
		{
			Opcode: OpTimeSync, Name: "time_sync",
			Directions: DirOutbound,
			OutLen:     4,
		},
		{
			Opcode: OpBroadcast, Name: "broadcast",
			Directions: DirInbound,
			inLen:      func(probes int) int { return 3 + 2*probes },
			decode:     decodeBroadcast,
		},
		{
			Opcode: OpFirmware, Name: "firmware",
			Directions: DirOutbound | DirInbound,
			OutLen:     0,
			inLen:      fixedLen(3),
			decode:     decodeFirmware,
		},

		// Observed but unclassified. No decoder means raw passthrough, and
		// no length enforcement so unexpected shapes never kill the stream.
		{Opcode: OpUnknown03, Name: "unclassified_03", Directions: DirInbound, inLen: fixedLen(anyLength)},
		{Opcode: OpUnknown29, Name: "unclassified_29", Directions: DirInbound, inLen: fixedLen(anyLength)},
		{Opcode: OpUnknown42, Name: "unclassified_42", Directions: DirInbound, inLen: fixedLen(anyLength)},
		{Opcode: OpError, Name: "device_error", Directions: DirInbound, inLen: fixedLen(anyLength)},
	}

	m := make(map[byte]*Descriptor, len(entries))
	for _, e := range entries {
		m[e.Opcode] = e
	}
	return m
}

// Lookup returns the catalog entry for an opcode.
func Lookup(opcode byte) (*Descriptor, bool) {
	d, ok := catalog[opcode]
	return d, ok
}

// ValidateOutbound checks that an opcode may be sent with the given payload.
// Called before any bytes hit the transport.
func ValidateOutbound(opcode byte, payload []byte) error {
	d, ok := catalog[opcode]
	if !ok {
		return fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, opcode)
	}
	if d.Directions&DirOutbound == 0 {
		return fmt.Errorf("%w: 0x%02x is inbound-only", ErrDirection, opcode)
	}
	if len(payload) != d.OutLen {
		return &LengthError{Opcode: opcode, Got: len(payload), Want: d.OutLen}
	}
	return nil
}

// DecodeMessage turns an inbound frame into a typed Message using the
// catalog. Unknown opcodes decode to RawMessage (not an error). A known
// opcode with the wrong payload length returns a LengthError; the session
// logs and drops those without tearing anything down.
func DecodeMessage(f *Frame, probes int) (Message, error) {
	d, ok := catalog[f.Opcode]
	if !ok || d.Directions&DirInbound == 0 || d.decode == nil {
		return &RawMessage{Op: f.Opcode, Data: f.Payload}, nil
	}

	if want := d.inLen(probes); want != anyLength && len(f.Payload) != want {
		return nil, &LengthError{Opcode: f.Opcode, Got: len(f.Payload), Want: want}
	}
	return d.decode(f.Payload, probes)
}

func decodeAuth(payload []byte, _ int) (Message, error) {
	return &AuthResponse{
		DeviceTypeHint: payload[0],
		ProbeCountHint: payload[1],
		Raw:            payload,
	}, nil
}

func decodeStatus(payload []byte, _ int) (Message, error) {
	return &DeviceStatus{
		Units:         Units(payload[0]),
		BeeperEnabled: payload[1] == valueOn,
		Battery:       payload[2],
	}, nil
}

func decodeBroadcast(payload []byte, probes int) (Message, error) {
	temps, err := decodeTempRun(payload[3:], probes)
	if err != nil {
		return nil, err
	}
	return &Broadcast{
		Battery: payload[0],
		Units:   Units(payload[1]),
		Alarms:  payload[2],
		Temps:   temps,
	}, nil
}

func decodeSnapshot(payload []byte, probes int) (Message, error) {
	temps, err := decodeTempRun(payload[2:], probes)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ProbeCount: payload[0],
		Alarms:     payload[1],
		Temps:      temps,
	}, nil
}

func decodeAlarmConfig(payload []byte, probes int) (Message, error) {
	channel := payload[0]
	if channel < 1 || int(channel) > probes {
		// Some firmwares echo garbage channels; pass through rather than fail.
		return &RawMessage{Op: OpGetAlarm, Data: payload}, nil
	}
	primary, err := DecodeTemperature(payload[2:4])
	if err != nil {
		return nil, fmt.Errorf("alarm primary temp: %w", err)
	}
	secondary, err := DecodeTemperature(payload[4:6])
	if err != nil {
		return nil, fmt.Errorf("alarm secondary temp: %w", err)
	}
	return &AlarmConfig{
		Channel:   channel,
		Mode:      AlarmMode(payload[1]),
		Primary:   primary,
		Secondary: secondary,
	}, nil
}

func decodeFirmware(payload []byte, _ int) (Message, error) {
	return &FirmwareVersion{
		Major: payload[0] >> 4,
		Minor: payload[0] & 0x0F,
		Patch: payload[1],
		Build: payload[2],
	}, nil
}

func decodeTempRun(data []byte, probes int) ([]Temperature, error) {
	temps := make([]Temperature, 0, probes)
	for i := 0; i < probes; i++ {
		t, err := DecodeTemperature(data[i*2 : i*2+2])
		if err != nil {
			return nil, fmt.Errorf("probe %d: %w", i+1, err)
		}
		temps = append(temps, t)
	}
	return temps, nil
}
