// Package protocol implements the TP90x BLE thermometer wire protocol.
//
// This package handles framing, validation, and construction of the binary
// packets exchanged with ThermoPro TP902/TP904 thermometers over BLE GATT
// write/notify characteristics. It is purely computational: no I/O, no
// state, everything safe for concurrent use.
//
// # Frame Format
//
// Every packet, in either direction, uses the same grammar:
//   - Opcode: 1 byte
//   - Payload length: 1 byte
//   - Payload: 0-255 bytes
//   - Checksum: 1 byte, low 8 bits of the sum of all preceding bytes
//
// BLE notifications are often padded to a fixed notification size (typically
// 20 bytes); Decode ignores any bytes past the checksum.
//
// # Command Catalog
//
// Every known opcode has one immutable Descriptor in a catalog built at init:
// allowed directions, expected payload lengths, and the payload decoder.
// Periodic broadcasts (0x30) and on-demand snapshots (0x25) have lengths that
// depend on the model's probe count, so inbound validation takes it as a
// parameter. Opcodes observed in captures but not yet classified decode to
// RawMessage instead of failing; undocumented traffic is expected in the wild.
//
// # Temperatures
//
// Probe readings are two BCD bytes in tenths of a degree with bit 7 of the
// high byte as a sign flag. The literal value 0xFFFF is the "probe absent"
// sentinel and never decodes to a number.
//
// # Usage Example
//
//	pkt, err := protocol.BuildSetUnits(protocol.UnitsCelsius)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// write pkt to the GATT write characteristic ...
//
//	frame, err := protocol.Decode(notification)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	msg, err := protocol.DecodeMessage(frame, 6)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	switch m := msg.(type) {
//	case *protocol.Broadcast:
//	    fmt.Println(m.Temps)
//	}
package protocol
