// Package ble connects TP90x thermometers over BLE GATT and adapts the
// platform stack to the session transport contract.
//
// Discovery is model-specific: the TP902 is located by its fixed BLE
// address, the TP904 by its advertised local name. Both strategies share
// the scan/connect/subscribe plumbing; only the advertisement match differs.
package ble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/muurk/tp90x/internal/logging"
	"github.com/muurk/tp90x/internal/session"
)

// GATT UUIDs shared by the whole TP90x family.
const (
	ServiceUUID    = "1086fff0-3343-4817-8bb2-b32206336ce8"
	WriteCharUUID  = "1086fff1-3343-4817-8bb2-b32206336ce8"
	NotifyCharUUID = "1086fff2-3343-4817-8bb2-b32206336ce8"
)

// DefaultScanTimeout bounds advertisement scanning during discovery.
const DefaultScanTimeout = 10 * time.Second

var (
	serviceUUID = mustParseUUID(ServiceUUID)
	writeUUID   = mustParseUUID(WriteCharUUID)
	notifyUUID  = mustParseUUID(NotifyCharUUID)
)

func mustParseUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(fmt.Sprintf("ble: bad UUID constant %q: %v", s, err))
	}
	return uuid
}

// Transport is a connected GATT link: frames go out through the write
// characteristic, notifications come back through an internal queue so the
// BLE event thread is never blocked by the session.
type Transport struct {
	device bluetooth.Device
	write  bluetooth.DeviceCharacteristic
	queue  *session.NotifyQueue
}

// Send writes one frame to the write characteristic.
func (t *Transport) Send(data []byte) error {
	if _, err := t.write.WriteWithoutResponse(data); err != nil {
		return fmt.Errorf("gatt write: %w", err)
	}
	return nil
}

// Receive blocks until the next notification, in arrival order.
func (t *Transport) Receive(ctx context.Context) ([]byte, error) {
	return t.queue.Pop(ctx)
}

// Close stops notification delivery and disconnects the device.
func (t *Transport) Close() error {
	t.queue.Stop()
	return t.device.Disconnect()
}

// AddressFinder locates a device by its fixed BLE address.
type AddressFinder struct {
	Adapter     *bluetooth.Adapter
	ScanTimeout time.Duration
}

// NewAddressFinder uses the platform default adapter.
func NewAddressFinder() *AddressFinder {
	return &AddressFinder{Adapter: bluetooth.DefaultAdapter, ScanTimeout: DefaultScanTimeout}
}

// Find scans for the given address and connects.
func (f *AddressFinder) Find(ctx context.Context, identifier string) (session.Transport, error) {
	return connect(ctx, f.Adapter, f.ScanTimeout, identifier, func(r bluetooth.ScanResult) bool {
		return strings.EqualFold(r.Address.String(), identifier)
	})
}

// NameFinder locates a device by advertised local name prefix.
type NameFinder struct {
	Adapter     *bluetooth.Adapter
	ScanTimeout time.Duration
}

// NewNameFinder uses the platform default adapter.
func NewNameFinder() *NameFinder {
	return &NameFinder{Adapter: bluetooth.DefaultAdapter, ScanTimeout: DefaultScanTimeout}
}

// Find scans for an advertisement whose local name starts with identifier
// and connects to the first match.
func (f *NameFinder) Find(ctx context.Context, identifier string) (session.Transport, error) {
	return connect(ctx, f.Adapter, f.ScanTimeout, identifier, func(r bluetooth.ScanResult) bool {
		name := r.LocalName()
		return name != "" && strings.HasPrefix(name, identifier)
	})
}

func connect(ctx context.Context, adapter *bluetooth.Adapter, scanTimeout time.Duration,
	identifier string, match func(bluetooth.ScanResult) bool) (session.Transport, error) {

	if adapter == nil {
		adapter = bluetooth.DefaultAdapter
	}
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enabling BLE adapter: %w", err)
	}

	result, err := scan(ctx, adapter, scanTimeout, match)
	if err != nil {
		return nil, err
	}
	logging.Info("device found",
		zap.String("address", result.Address.String()),
		zap.String("name", result.LocalName()),
		zap.Int16("rssi", result.RSSI),
	)

	dev, err := adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", result.Address.String(), err)
	}

	transport, err := subscribe(dev)
	if err != nil {
		dev.Disconnect()
		return nil, err
	}
	return transport, nil
}

// scan runs the blocking adapter scan on its own goroutine and returns the
// first advertisement the matcher accepts, or fails on timeout.
func scan(ctx context.Context, adapter *bluetooth.Adapter, timeout time.Duration,
	match func(bluetooth.ScanResult) bool) (bluetooth.ScanResult, error) {

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	found := make(chan bluetooth.ScanResult, 1)
	scanErr := make(chan error, 1)

	go func() {
		err := adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
			if !match(r) {
				return
			}
			select {
			case found <- r:
			default:
			}
			a.StopScan()
		})
		if err != nil {
			scanErr <- err
		}
	}()

	select {
	case r := <-found:
		return r, nil
	case err := <-scanErr:
		return bluetooth.ScanResult{}, fmt.Errorf("scanning: %w", err)
	case <-scanCtx.Done():
		adapter.StopScan()
		return bluetooth.ScanResult{}, fmt.Errorf("device not found: %w", scanCtx.Err())
	}
}

// subscribe resolves the TP90x service characteristics and routes
// notifications into the transport queue.
func subscribe(dev bluetooth.Device) (*Transport, error) {
	services, err := dev.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		return nil, fmt.Errorf("discovering service: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("device does not expose service %s", ServiceUUID)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{writeUUID, notifyUUID})
	if err != nil {
		return nil, fmt.Errorf("discovering characteristics: %w", err)
	}

	transport := &Transport{device: dev, queue: session.NewNotifyQueue()}
	var notify bluetooth.DeviceCharacteristic
	var haveWrite, haveNotify bool
	for _, c := range chars {
		switch {
		case c.UUID() == writeUUID:
			transport.write = c
			haveWrite = true
		case c.UUID() == notifyUUID:
			notify = c
			haveNotify = true
		}
	}
	if !haveWrite || !haveNotify {
		return nil, fmt.Errorf("service is missing write or notify characteristic")
	}

	err = notify.EnableNotifications(func(buf []byte) {
		logging.LogRawBytes("notification", buf)
		transport.queue.Push(buf)
	})
	if err != nil {
		return nil, fmt.Errorf("enabling notifications: %w", err)
	}
	return transport, nil
}
