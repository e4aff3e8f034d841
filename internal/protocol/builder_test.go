package protocol

import (
	"bytes"
	"testing"
	"time"
)

func TestBuilders(t *testing.T) {
	tests := []struct {
		name    string
		build   func() ([]byte, error)
		want    []byte
		wantErr bool
	}{
		{
			name:  "set units fahrenheit",
			build: func() ([]byte, error) { return BuildSetUnits(UnitsFahrenheit) },
			want:  []byte{0x20, 0x01, 0x0f, 0x30},
		},
		{
			name:    "set units rejects other bytes",
			build:   func() ([]byte, error) { return BuildSetUnits(Units(0x42)) },
			wantErr: true,
		},
		{
			name:  "alarm sound on",
			build: func() ([]byte, error) { return BuildSetAlarmSound(true) },
			want:  []byte{0x21, 0x01, 0x0c, 0x2e},
		},
		{
			name:  "alarm sound off",
			build: func() ([]byte, error) { return BuildSetAlarmSound(false) },
			want:  []byte{0x21, 0x01, 0x0f, 0x31},
		},
		{
			name: "set alarm off writes sentinels",
			build: func() ([]byte, error) {
				return BuildSetAlarm(AlarmConfig{Channel: 1, Mode: AlarmOff})
			},
			want: []byte{0x23, 0x06, 0x01, 0x00, 0xff, 0xff, 0xff, 0xff, 0x26},
		},
		{
			name: "set alarm target",
			build: func() ([]byte, error) {
				return BuildSetAlarm(AlarmConfig{
					Channel: 3,
					Mode:    AlarmTarget,
					Primary: TemperatureFromTenths(750), // 75.0
				})
			},
			want: []byte{0x23, 0x06, 0x03, 0x0a, 0x07, 0x50, 0x00, 0x00, 0x8d},
		},
		{
			name: "set alarm range",
			build: func() ([]byte, error) {
				return BuildSetAlarm(AlarmConfig{
					Channel:   1,
					Mode:      AlarmRange,
					Primary:   TemperatureFromTenths(800), // high
					Secondary: TemperatureFromTenths(600), // low
				})
			},
			want: []byte{0x23, 0x06, 0x01, 0x82, 0x08, 0x00, 0x06, 0x00, 0xba},
		},
		{
			name: "set alarm invalid mode",
			build: func() ([]byte, error) {
				return BuildSetAlarm(AlarmConfig{Channel: 1, Mode: AlarmMode(0x7f)})
			},
			wantErr: true,
		},
		{
			name:  "get alarm channel 2",
			build: func() ([]byte, error) { return BuildGetAlarm(2) },
			want:  []byte{0x24, 0x01, 0x02, 0x27},
		},
		{
			name:  "get status",
			build: BuildGetStatus,
			want:  []byte{0x26, 0x00, 0x26},
		},
		{
			name:  "get firmware",
			build: BuildGetFirmware,
			want:  []byte{0x41, 0x00, 0x41},
		},
		{
			name:  "backlight",
			build: BuildBacklight,
			want:  []byte{0x02, 0x00, 0x02},
		},
		{
			name:  "snooze",
			build: BuildSnooze,
			want:  []byte{0x27, 0x00, 0x27},
		},
		{
			name:  "time sync little endian",
			build: func() ([]byte, error) { return BuildTimeSync(0x04030201) },
			want:  []byte{0x28, 0x04, 0x01, 0x02, 0x03, 0x04, 0x36},
		},
		{
			name:    "auth rejects short payload",
			build:   func() ([]byte, error) { return BuildAuth([]byte{0x01}) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("built % x, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("build error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("frame = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestBuildAuthDefaultPayload(t *testing.T) {
	frame, err := BuildAuth(DefaultAuthPayload[:])
	if err != nil {
		t.Fatalf("BuildAuth() error = %v", err)
	}
	// Matches the captured handshake packet byte for byte.
	want := []byte{0x01, 0x09, 0x99, 0xa8, 0x89, 0x3c, 0x66, 0x81, 0x75, 0x0d, 0xe3, 0x5c}
	if !bytes.Equal(frame, want) {
		t.Errorf("auth frame = % x, want % x", frame, want)
	}
}

func TestBuildTimeSyncAt(t *testing.T) {
	frame, err := BuildTimeSyncAt(time.Unix(Epoch2020+60, 0))
	if err != nil {
		t.Fatalf("BuildTimeSyncAt() error = %v", err)
	}
	want := []byte{0x28, 0x04, 0x3c, 0x00, 0x00, 0x00, 0x68}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % x, want % x", frame, want)
	}

	// Pre-epoch instants clamp to zero rather than underflowing.
	frame, err = BuildTimeSyncAt(time.Unix(Epoch2020-1000, 0))
	if err != nil {
		t.Fatalf("BuildTimeSyncAt() error = %v", err)
	}
	want = []byte{0x28, 0x04, 0x00, 0x00, 0x00, 0x00, 0x2c}
	if !bytes.Equal(frame, want) {
		t.Errorf("clamped frame = % x, want % x", frame, want)
	}
}
