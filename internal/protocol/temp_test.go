package protocol

import (
	"errors"
	"testing"
)

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantErr    error
		wantAbsent bool
		wantTenths int
	}{
		{
			name:       "positive reading",
			data:       []byte{0x12, 0x34},
			wantTenths: 1234, // 123.4 degrees
		},
		{
			name:       "zero",
			data:       []byte{0x00, 0x00},
			wantTenths: 0,
		},
		{
			name:       "negative reading",
			data:       []byte{0x81, 0x05},
			wantTenths: -105, // -10.5 degrees
		},
		{
			name:       "probe absent sentinel",
			data:       []byte{0xff, 0xff},
			wantAbsent: true,
		},
		{
			name:    "invalid high nibble",
			data:    []byte{0x1a, 0x00},
			wantErr: ErrInvalidBCD,
		},
		{
			name:    "invalid low nibble",
			data:    []byte{0x12, 0x3b},
			wantErr: ErrInvalidBCD,
		},
		{
			name:    "too short",
			data:    []byte{0x12},
			wantErr: ErrTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTemperature(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeTemperature() error = %v", err)
			}
			if tt.wantAbsent {
				if got.Present {
					t.Fatalf("reading = %v, want absent", got)
				}
				return
			}
			if !got.Present {
				t.Fatalf("reading absent, want %d tenths", tt.wantTenths)
			}
			if got.Tenths != tt.wantTenths {
				t.Errorf("tenths = %d, want %d", got.Tenths, tt.wantTenths)
			}
		})
	}
}

func TestEncodeTemperature(t *testing.T) {
	sentinel, err := EncodeTemperature(AbsentTemperature)
	if err != nil {
		t.Fatalf("EncodeTemperature(absent) error = %v", err)
	}
	if sentinel != [2]byte{0xff, 0xff} {
		t.Errorf("absent encoding = % x, want ff ff", sentinel)
	}

	if _, err := EncodeTemperature(TemperatureFromTenths(10000)); !errors.Is(err, ErrTemperatureRange) {
		t.Errorf("err = %v, want ErrTemperatureRange", err)
	}
}

func TestTemperatureRoundTrip(t *testing.T) {
	// Every representable tenths value must survive encode/decode unchanged.
	for tenths := -9999; tenths <= 9999; tenths++ {
		in := TemperatureFromTenths(tenths)
		raw, err := EncodeTemperature(in)
		if err != nil {
			t.Fatalf("EncodeTemperature(%d) error = %v", tenths, err)
		}
		out, err := DecodeTemperature(raw[:])
		if err != nil {
			t.Fatalf("DecodeTemperature(% x) error = %v", raw, err)
		}
		if !out.Present || out.Tenths != tenths {
			t.Fatalf("round trip %d -> % x -> %v", tenths, raw, out)
		}
	}
}

func TestTemperatureFromDegrees(t *testing.T) {
	tests := []struct {
		deg        float64
		wantTenths int
	}{
		{23.5, 235},
		{-10.55, -106}, // rounds away from zero
		{0, 0},
		{99.94, 999},
	}

	for _, tt := range tests {
		got := TemperatureFromDegrees(tt.deg)
		if got.Tenths != tt.wantTenths {
			t.Errorf("TemperatureFromDegrees(%v) = %d tenths, want %d", tt.deg, got.Tenths, tt.wantTenths)
		}
	}
}
