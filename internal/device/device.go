package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/tp90x/internal/logging"
	"github.com/muurk/tp90x/internal/protocol"
	"github.com/muurk/tp90x/internal/session"
)

var (
	// ErrInvalidArgument indicates a caller-supplied value outside its
	// domain; rejected before any bytes are sent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnexpectedReply indicates the device answered with a payload shape
	// the catalog could not map to the expected response type.
	ErrUnexpectedReply = errors.New("unexpected reply shape")
)

// Device is the model-specific facade over one protocol session. All
// operations are synchronous; broadcasts flow independently through
// Broadcasts regardless of in-flight calls.
type Device struct {
	model Model
	sess  *session.Session

	requestTimeout time.Duration
	ackGrace       time.Duration
	authPayload    AuthPayloadFunc
}

// Connect discovers the device through the finder and wraps the resulting
// transport in a fresh session. The caller must Authenticate before issuing
// other commands.
func Connect(ctx context.Context, model Model, finder Finder, identifier string, opts ...Option) (*Device, error) {
	tr, err := finder.Find(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("finding %s %q: %w", model.Name, identifier, err)
	}
	logging.Info("device connected",
		zap.String("model", model.Name),
		zap.String("identifier", identifier),
	)
	return NewWithTransport(model, tr, opts...), nil
}

// NewWithTransport wraps an already-connected transport. Used by tests and
// by callers bringing their own BLE plumbing.
func NewWithTransport(model Model, tr session.Transport, opts ...Option) *Device {
	d := &Device{
		model:          model,
		sess:           session.New(tr, model.Probes),
		requestTimeout: DefaultRequestTimeout,
		ackGrace:       DefaultAckGrace,
		authPayload:    defaultAuthPayload,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Model returns the variant this device was opened as.
func (d *Device) Model() Model { return d.model }

// Close disconnects the session and terminates the broadcast stream.
func (d *Device) Close() error { return d.sess.Close() }

// Broadcasts returns the unsolicited message stream: periodic temperature
// broadcasts plus raw frames for unclassified opcodes, in arrival order.
// The channel closes on disconnect.
func (d *Device) Broadcasts() <-chan protocol.Message { return d.sess.Broadcasts() }

// Authenticate performs the 0x01 handshake. It must complete before any
// other command is accepted; the session enforces this.
func (d *Device) Authenticate(ctx context.Context) (*protocol.AuthResponse, error) {
	msg, err := d.sess.Submit(ctx, protocol.OpAuth, d.authPayload(), d.requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	resp, ok := msg.(*protocol.AuthResponse)
	if !ok {
		return nil, fmt.Errorf("authenticate: %w: %T", ErrUnexpectedReply, msg)
	}
	return resp, nil
}

// Status reads the device status: display units, beeper flag, battery level.
func (d *Device) Status(ctx context.Context) (*protocol.DeviceStatus, error) {
	msg, err := d.sess.Submit(ctx, protocol.OpGetStatus, nil, d.requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	status, ok := msg.(*protocol.DeviceStatus)
	if !ok {
		return nil, fmt.Errorf("get status: %w: %T", ErrUnexpectedReply, msg)
	}
	return status, nil
}

// Firmware reads the firmware version.
func (d *Device) Firmware(ctx context.Context) (*protocol.FirmwareVersion, error) {
	msg, err := d.sess.Submit(ctx, protocol.OpFirmware, nil, d.requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("get firmware: %w", err)
	}
	fw, ok := msg.(*protocol.FirmwareVersion)
	if !ok {
		return nil, fmt.Errorf("get firmware: %w: %T", ErrUnexpectedReply, msg)
	}
	return fw, nil
}

// Alarm reads the alarm configuration for one channel.
func (d *Device) Alarm(ctx context.Context, channel uint8) (*protocol.AlarmConfig, error) {
	if err := d.validateChannel(channel); err != nil {
		return nil, err
	}
	msg, err := d.sess.Submit(ctx, protocol.OpGetAlarm, []byte{channel}, d.requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("get alarm: %w", err)
	}
	cfg, ok := msg.(*protocol.AlarmConfig)
	if !ok {
		return nil, fmt.Errorf("get alarm: %w: %T", ErrUnexpectedReply, msg)
	}
	return cfg, nil
}

// SetUnits sets the display units.
func (d *Device) SetUnits(ctx context.Context, units protocol.Units) error {
	payload, err := unitsPayload(units)
	if err != nil {
		return err
	}
	return d.ackWrite(ctx, protocol.OpSetUnits, payload)
}

// SetAlarmSound enables or disables the audible alarm.
func (d *Device) SetAlarmSound(ctx context.Context, enabled bool) error {
	return d.ackWrite(ctx, protocol.OpSetAlarmSound, protocol.AlarmSoundPayload(enabled))
}

// SetAlarm writes an alarm configuration for one channel. The device owns
// the authoritative alarm state; this only transports the request.
func (d *Device) SetAlarm(ctx context.Context, cfg protocol.AlarmConfig) error {
	if err := d.validateChannel(cfg.Channel); err != nil {
		return err
	}
	payload, err := protocol.SetAlarmPayload(cfg)
	if err != nil {
		return fmt.Errorf("set alarm: %w", err)
	}
	return d.ackWrite(ctx, protocol.OpSetAlarm, payload)
}

// SyncTime sets the device clock to the given instant.
func (d *Device) SyncTime(ctx context.Context, t time.Time) error {
	secs := t.Unix() - protocol.Epoch2020
	if secs < 0 {
		secs = 0
	}
	return d.SyncTimeSeconds(ctx, uint32(secs))
}

// SyncTimeSeconds sets the device clock from raw seconds since the 2020 epoch.
func (d *Device) SyncTimeSeconds(ctx context.Context, secondsSince2020 uint32) error {
	return d.ackWrite(ctx, protocol.OpTimeSync, protocol.TimeSyncPayload(secondsSince2020))
}

// Snooze silences a beeping alarm until its next trigger.
func (d *Device) Snooze(ctx context.Context) error {
	return d.ackWrite(ctx, protocol.OpSnooze, nil)
}

// Backlight lights the LCD, same as a button press.
func (d *Device) Backlight(ctx context.Context) error {
	return d.ackWrite(ctx, protocol.OpBacklight, nil)
}

// ackWrite submits a command whose opcode has no documented confirmed
// response: silence for the grace window counts as success, and any reply
// that does arrive is accepted as the ack.
func (d *Device) ackWrite(ctx context.Context, opcode byte, payload []byte) error {
	_, err := d.sess.Submit(ctx, opcode, payload, d.ackGrace)
	if errors.Is(err, session.ErrTimeout) {
		return nil
	}
	return err
}

func (d *Device) validateChannel(channel uint8) error {
	if channel < 1 || int(channel) > d.model.Probes {
		return fmt.Errorf("%w: channel %d out of range 1..%d for %s",
			ErrInvalidArgument, channel, d.model.Probes, d.model.Name)
	}
	return nil
}

func unitsPayload(units protocol.Units) ([]byte, error) {
	if units != protocol.UnitsCelsius && units != protocol.UnitsFahrenheit {
		return nil, fmt.Errorf("%w: units byte 0x%02x", ErrInvalidArgument, byte(units))
	}
	return []byte{byte(units)}, nil
}
