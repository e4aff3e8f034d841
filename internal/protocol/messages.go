package protocol

import (
	"fmt"
	"strings"
)

// Opcode constants (host -> device unless noted).
const (
	OpAuth          = 0x01 // auth handshake, 9-byte payload out, 2-byte response
	OpBacklight     = 0x02 // light the LCD, same as a button press
	OpSetUnits      = 0x20
	OpSetAlarmSound = 0x21
	OpSetAlarm      = 0x23
	OpGetAlarm      = 0x24 // request out, config response in
	OpSnapshot      = 0x25 // device -> host, on-demand temperature snapshot
	OpGetStatus     = 0x26
	OpSnooze        = 0x27 // silence a beeping alarm until the next trigger
	OpTimeSync      = 0x28
	OpBroadcast     = 0x30 // device -> host, periodic temperature broadcast
	OpFirmware      = 0x41

	// Observed in captures but not classified; decoded as raw passthrough.
	OpUnknown03 = 0x03
	OpUnknown29 = 0x29
	OpUnknown42 = 0x42
	OpError     = 0xE0
)

// Units is the display unit byte. The same two byte values double as
// boolean on/off in other fields (beeper, alarm sound).
type Units byte

const (
	UnitsCelsius    Units = 0x0C
	UnitsFahrenheit Units = 0x0F
)

// Boolean-ish field values sharing the units encoding.
const (
	valueOn  byte = 0x0C
	valueOff byte = 0x0F
)

func (u Units) String() string {
	switch u {
	case UnitsCelsius:
		return "C"
	case UnitsFahrenheit:
		return "F"
	default:
		return fmt.Sprintf("0x%02x", byte(u))
	}
}

// AlarmMode selects how a channel alarm triggers.
type AlarmMode byte

const (
	AlarmOff    AlarmMode = 0x00
	AlarmTarget AlarmMode = 0x0A
	AlarmRange  AlarmMode = 0x82
)

func (m AlarmMode) String() string {
	switch m {
	case AlarmOff:
		return "off"
	case AlarmTarget:
		return "target"
	case AlarmRange:
		return "range"
	default:
		return fmt.Sprintf("0x%02x", byte(m))
	}
}

// Message is a decoded inbound payload.
type Message interface {
	Opcode() byte
	String() string
}

// AuthResponse is the 2-byte reply to the auth handshake. The field mapping
// is not fully confirmed; treat the hints as best-effort.
type AuthResponse struct {
	DeviceTypeHint byte
	ProbeCountHint byte
	Raw            []byte
}

func (m *AuthResponse) Opcode() byte { return OpAuth }

func (m *AuthResponse) String() string {
	return fmt.Sprintf("Auth{type_hint=0x%02x, probes_hint=0x%02x}", m.DeviceTypeHint, m.ProbeCountHint)
}

// DeviceStatus is the decoded 0x26 response. An immutable snapshot,
// superseded by the next status read.
type DeviceStatus struct {
	Units         Units
	BeeperEnabled bool
	Battery       uint8 // percent, 0-100
}

func (m *DeviceStatus) Opcode() byte { return OpGetStatus }

func (m *DeviceStatus) String() string {
	beeper := "off"
	if m.BeeperEnabled {
		beeper = "on"
	}
	return fmt.Sprintf("Status{units=%s, beeper=%s, battery=%d%%}", m.Units, beeper, m.Battery)
}

// Broadcast is a decoded 0x30 periodic temperature notification.
// Alarms is the raw per-channel bitmask observed on the wire; the engine
// never infers device-side alarm transitions from it.
type Broadcast struct {
	Battery uint8
	Units   Units
	Alarms  byte
	Temps   []Temperature
}

func (m *Broadcast) Opcode() byte { return OpBroadcast }

// AlarmActive reports whether any alarm bit is set.
func (m *Broadcast) AlarmActive() bool { return m.Alarms != 0 }

func (m *Broadcast) String() string {
	return fmt.Sprintf("Broadcast{battery=%d%%, units=%s, alarms=0x%02x, temps=%s}",
		m.Battery, m.Units, m.Alarms, formatTemps(m.Temps))
}

// Snapshot is a decoded 0x25 on-demand temperature report. Values are
// always in Celsius regardless of the display unit.
type Snapshot struct {
	ProbeCount uint8
	Alarms     byte
	Temps      []Temperature
}

func (m *Snapshot) Opcode() byte { return OpSnapshot }

// AlarmActive reports whether any alarm bit is set.
func (m *Snapshot) AlarmActive() bool { return m.Alarms != 0 }

func (m *Snapshot) String() string {
	return fmt.Sprintf("Snapshot{probes=%d, alarms=0x%02x, temps=%s}",
		m.ProbeCount, m.Alarms, formatTemps(m.Temps))
}

// AlarmConfig is a channel alarm read via 0x24 or written via 0x23.
// Primary is the target (Target mode) or high bound (Range mode);
// Secondary is the low bound (Range mode only).
type AlarmConfig struct {
	Channel   uint8
	Mode      AlarmMode
	Primary   Temperature
	Secondary Temperature
}

func (m *AlarmConfig) Opcode() byte { return OpGetAlarm }

func (m *AlarmConfig) String() string {
	switch m.Mode {
	case AlarmOff:
		return fmt.Sprintf("Alarm{ch%d off}", m.Channel)
	case AlarmTarget:
		return fmt.Sprintf("Alarm{ch%d target=%s}", m.Channel, m.Primary)
	case AlarmRange:
		return fmt.Sprintf("Alarm{ch%d range=%s..%s}", m.Channel, m.Secondary, m.Primary)
	default:
		return fmt.Sprintf("Alarm{ch%d mode=%s}", m.Channel, m.Mode)
	}
}

// FirmwareVersion is the decoded 0x41 response. Major and minor are the two
// nibbles of a BCD-ish version byte; Patch and Build are opaque bytes whose
// format is unconfirmed.
type FirmwareVersion struct {
	Major uint8
	Minor uint8
	Patch byte
	Build byte
}

func (m *FirmwareVersion) Opcode() byte { return OpFirmware }

func (m *FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%02x.%02x", m.Major, m.Minor, m.Patch, m.Build)
}

// RawMessage is the passthrough for unclassified or unknown opcodes.
// Receiving one is never an error.
type RawMessage struct {
	Op   byte
	Data []byte
}

func (m *RawMessage) Opcode() byte { return m.Op }

func (m *RawMessage) String() string {
	return fmt.Sprintf("Raw{opcode=0x%02x, data=% x}", m.Op, m.Data)
}

func formatTemps(temps []Temperature) string {
	parts := make([]string, len(temps))
	for i, t := range temps {
		parts[i] = fmt.Sprintf("T%d=%s", i+1, t)
	}
	return strings.Join(parts, " ")
}
