package protocol

import (
	"errors"
	"testing"
)

func TestValidateOutbound(t *testing.T) {
	tests := []struct {
		name    string
		opcode  byte
		payload []byte
		wantErr error
	}{
		{name: "status request", opcode: OpGetStatus, payload: nil},
		{name: "set units", opcode: OpSetUnits, payload: []byte{0x0c}},
		{name: "time sync", opcode: OpTimeSync, payload: []byte{0x00, 0x01, 0x02, 0x03}},
		{name: "unknown opcode", opcode: 0x99, wantErr: ErrUnknownOpcode},
		{name: "inbound only", opcode: OpBroadcast, wantErr: ErrDirection},
		{name: "wrong length", opcode: OpSetUnits, payload: []byte{0x0c, 0x0c}, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutbound(tt.opcode, tt.payload)
			switch {
			case tt.name == "wrong length":
				var lenErr *LengthError
				if !errors.As(err, &lenErr) {
					t.Fatalf("err = %v, want LengthError", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case err != nil:
				t.Fatalf("ValidateOutbound() error = %v", err)
			}
		})
	}
}

func TestDecodeMessageBroadcast(t *testing.T) {
	// Worked example: battery 50%, Celsius, no alarms, all six probes absent,
	// padded to the 20-byte notification size.
	raw := []byte{
		0x30, 0x0f, 0x32, 0x0c, 0x00,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x71, // checksum
		0x00, 0x00,
	}

	frame, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	msg, err := DecodeMessage(frame, 6)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}

	bc, ok := msg.(*Broadcast)
	if !ok {
		t.Fatalf("message type = %T, want *Broadcast", msg)
	}
	if bc.Battery != 50 {
		t.Errorf("battery = %d, want 50", bc.Battery)
	}
	if bc.Units != UnitsCelsius {
		t.Errorf("units = %v, want C", bc.Units)
	}
	if bc.AlarmActive() {
		t.Error("alarm flag set, want clear")
	}
	if len(bc.Temps) != 6 {
		t.Fatalf("probe count = %d, want 6", len(bc.Temps))
	}
	for i, temp := range bc.Temps {
		if temp.Present {
			t.Errorf("probe %d = %v, want absent", i+1, temp)
		}
	}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		// payload is wrapped in a valid frame before decoding
		payload []byte
		probes  int
		verify  func(t *testing.T, msg Message)
	}{
		{
			name:    "device status",
			opcode:  OpGetStatus,
			payload: []byte{0x0c, 0x0c, 0x32, 0x00, 0x00},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				st, ok := msg.(*DeviceStatus)
				if !ok {
					t.Fatalf("message type = %T, want *DeviceStatus", msg)
				}
				if st.Units != UnitsCelsius || !st.BeeperEnabled || st.Battery != 50 {
					t.Errorf("status = %v, want C/beeper on/50%%", st)
				}
			},
		},
		{
			name:    "alarm config target",
			opcode:  OpGetAlarm,
			payload: []byte{0x02, 0x0a, 0x12, 0x34, 0x00, 0x00},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				ac, ok := msg.(*AlarmConfig)
				if !ok {
					t.Fatalf("message type = %T, want *AlarmConfig", msg)
				}
				if ac.Channel != 2 || ac.Mode != AlarmTarget {
					t.Errorf("config = %v, want ch2 target", ac)
				}
				if ac.Primary.Tenths != 1234 {
					t.Errorf("primary = %v, want 123.4", ac.Primary)
				}
			},
		},
		{
			name:    "alarm config bogus channel passes through raw",
			opcode:  OpGetAlarm,
			payload: []byte{0x09, 0x0a, 0x12, 0x34, 0x00, 0x00},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				if _, ok := msg.(*RawMessage); !ok {
					t.Fatalf("message type = %T, want *RawMessage", msg)
				}
			},
		},
		{
			name:    "firmware version",
			opcode:  OpFirmware,
			payload: []byte{0x12, 0xab, 0xcd},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				fw, ok := msg.(*FirmwareVersion)
				if !ok {
					t.Fatalf("message type = %T, want *FirmwareVersion", msg)
				}
				if fw.String() != "1.2.ab.cd" {
					t.Errorf("version = %s, want 1.2.ab.cd", fw)
				}
			},
		},
		{
			name:   "snapshot",
			opcode: OpSnapshot,
			payload: []byte{
				0x06, 0x01,
				0x02, 0x50, 0xff, 0xff, 0xff, 0xff,
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			},
			probes: 6,
			verify: func(t *testing.T, msg Message) {
				sn, ok := msg.(*Snapshot)
				if !ok {
					t.Fatalf("message type = %T, want *Snapshot", msg)
				}
				if sn.ProbeCount != 6 || !sn.AlarmActive() {
					t.Errorf("snapshot = %v, want 6 probes with alarm", sn)
				}
				if sn.Temps[0].Tenths != 250 {
					t.Errorf("probe 1 = %v, want 25.0", sn.Temps[0])
				}
			},
		},
		{
			name:    "auth response",
			opcode:  OpAuth,
			payload: []byte{0x02, 0x06},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				ar, ok := msg.(*AuthResponse)
				if !ok {
					t.Fatalf("message type = %T, want *AuthResponse", msg)
				}
				if ar.DeviceTypeHint != 0x02 || ar.ProbeCountHint != 0x06 {
					t.Errorf("auth = %v", ar)
				}
			},
		},
		{
			name:    "unknown opcode decodes raw",
			opcode:  0x77,
			payload: []byte{0xde, 0xad},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				raw, ok := msg.(*RawMessage)
				if !ok {
					t.Fatalf("message type = %T, want *RawMessage", msg)
				}
				if raw.Opcode() != 0x77 {
					t.Errorf("opcode = 0x%02x, want 0x77", raw.Opcode())
				}
			},
		},
		{
			name:    "unclassified opcode decodes raw",
			opcode:  OpError,
			payload: []byte{0x01, 0x02},
			probes:  6,
			verify: func(t *testing.T, msg Message) {
				if _, ok := msg.(*RawMessage); !ok {
					t.Fatalf("message type = %T, want *RawMessage", msg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.opcode, tt.payload)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			frame, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			msg, err := DecodeMessage(frame, tt.probes)
			if err != nil {
				t.Fatalf("DecodeMessage() error = %v", err)
			}
			tt.verify(t, msg)
		})
	}
}

func TestDecodeMessageLengthMismatch(t *testing.T) {
	// A 6-probe broadcast payload decoded with a 2-probe catalog view must be
	// reported as a length mismatch, not decoded or dropped silently.
	payload := make([]byte, 15)
	raw, err := Encode(OpBroadcast, payload)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	frame, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	_, err = DecodeMessage(frame, 2)
	var lenErr *LengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("err = %v, want LengthError", err)
	}
	if lenErr.Got != 15 || lenErr.Want != 7 {
		t.Errorf("LengthError = %v, want got=15 want=7", lenErr)
	}
}
