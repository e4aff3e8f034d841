package protocol

import (
	"fmt"
)

// Temperature is a single probe reading in tenths of a degree, or the
// "probe absent" state. The wire format is two BCD bytes with bit 7 of the
// high byte as a sign flag; the literal value 0xFFFF means no probe.
type Temperature struct {
	Tenths  int // signed tenths of a degree, valid only when Present
	Present bool
}

// AbsentTemperature is the "no probe connected" reading.
var AbsentTemperature = Temperature{}

// TemperatureFromTenths builds a present reading from signed tenths.
func TemperatureFromTenths(tenths int) Temperature {
	return Temperature{Tenths: tenths, Present: true}
}

// TemperatureFromDegrees builds a present reading from a degree value,
// rounding to the nearest tenth.
func TemperatureFromDegrees(deg float64) Temperature {
	tenths := int(deg * 10)
	if deg*10 > 0 {
		tenths = int(deg*10 + 0.5)
	} else if deg*10 < 0 {
		tenths = int(deg*10 - 0.5)
	}
	return Temperature{Tenths: tenths, Present: true}
}

// Degrees returns the reading as a float. Zero when the probe is absent.
func (t Temperature) Degrees() float64 {
	if !t.Present {
		return 0
	}
	return float64(t.Tenths) / 10.0
}

func (t Temperature) String() string {
	if !t.Present {
		return "---"
	}
	return fmt.Sprintf("%.1f", t.Degrees())
}

// DecodeTemperature parses two BCD bytes into a Temperature.
//
// Layout: high byte = [sign|hundreds][tens], low byte = [ones][tenths].
// 0xFFFF is the absent-probe sentinel and is checked before any BCD
// validation. A nibble above 9 fails with ErrInvalidBCD rather than
// clamping.
func DecodeTemperature(data []byte) (Temperature, error) {
	if len(data) < 2 {
		return Temperature{}, fmt.Errorf("%w: temperature needs 2 bytes, got %d", ErrTooShort, len(data))
	}
	if data[0] == 0xFF && data[1] == 0xFF {
		return AbsentTemperature, nil
	}

	neg := data[0]&0x80 != 0
	hi := data[0] & 0x7F

	hundreds := int(hi >> 4)
	tens := int(hi & 0x0F)
	ones := int(data[1] >> 4)
	tenths := int(data[1] & 0x0F)
	if hundreds > 9 || tens > 9 || ones > 9 || tenths > 9 {
		return Temperature{}, fmt.Errorf("%w: bytes %02x %02x", ErrInvalidBCD, data[0], data[1])
	}

	value := hundreds*1000 + tens*100 + ones*10 + tenths
	if neg {
		value = -value
	}
	return Temperature{Tenths: value, Present: true}, nil
}

// EncodeTemperature renders a Temperature back to its two wire bytes.
// The absent state always encodes to 0xFFFF. Magnitudes above 999.9 degrees
// do not fit three BCD digits and fail with ErrTemperatureRange.
func EncodeTemperature(t Temperature) ([2]byte, error) {
	if !t.Present {
		return [2]byte{0xFF, 0xFF}, nil
	}

	tenths := t.Tenths
	neg := tenths < 0
	if neg {
		tenths = -tenths
	}
	if tenths > 9999 {
		return [2]byte{}, fmt.Errorf("%w: %d tenths", ErrTemperatureRange, t.Tenths)
	}

	hundreds := tenths / 1000
	tens := (tenths / 100) % 10
	ones := (tenths / 10) % 10
	frac := tenths % 10

	hi := byte(hundreds<<4 | tens)
	if neg {
		hi |= 0x80
	}
	lo := byte(ones<<4 | frac)
	return [2]byte{hi, lo}, nil
}
