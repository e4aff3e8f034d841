// Package device is the model-specific facade over the TP90x protocol
// session: one type per concern the caller thinks in (status, alarms, time,
// broadcasts) instead of opcodes and payloads.
//
// The TP902 and TP904 share the frame grammar and command catalog; they
// differ only in probe count and in how they are discovered (fixed BLE
// address vs. advertised name). That difference lives entirely in the
// Finder given to Connect; everything after discovery is common.
//
// # Usage Example
//
//	finder := ble.NewAddressFinder()
//	dev, err := device.Connect(ctx, device.TP902, finder, "AA:BB:CC:DD:EE:FF")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	if _, err := dev.Authenticate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for msg := range dev.Broadcasts() {
//	    fmt.Println(msg)
//	}
package device
