package ble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tinygo.org/x/bluetooth"
)

// Discovered is one advertisement seen during a survey scan.
type Discovered struct {
	Address string
	Name    string
	RSSI    int16
}

// Discover surveys advertisements for the full timeout and returns every
// distinct device whose local name starts with the given prefix. An empty
// prefix matches any named device.
func Discover(ctx context.Context, adapter *bluetooth.Adapter, timeout time.Duration, prefix string) ([]Discovered, error) {
	if adapter == nil {
		adapter = bluetooth.DefaultAdapter
	}
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enabling BLE adapter: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type entry struct {
		addr string
		d    Discovered
	}
	results := make(chan entry, 16)
	scanErr := make(chan error, 1)

	go func() {
		err := adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
			name := r.LocalName()
			if name == "" || !strings.HasPrefix(name, prefix) {
				return
			}
			select {
			case results <- entry{addr: r.Address.String(), d: Discovered{
				Address: r.Address.String(),
				Name:    name,
				RSSI:    r.RSSI,
			}}:
			default:
			}
		})
		if err != nil {
			scanErr <- err
		}
	}()

	seen := make(map[string]bool)
	var found []Discovered
	for {
		select {
		case e := <-results:
			if !seen[e.addr] {
				seen[e.addr] = true
				found = append(found, e.d)
			}
		case err := <-scanErr:
			return found, fmt.Errorf("scanning: %w", err)
		case <-scanCtx.Done():
			adapter.StopScan()
			return found, nil
		}
	}
}
