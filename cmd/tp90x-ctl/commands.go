package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/tp90x/internal/ble"
	"github.com/muurk/tp90x/internal/config"
	"github.com/muurk/tp90x/internal/device"
	"github.com/muurk/tp90x/internal/protocol"
	"github.com/muurk/tp90x/internal/ui"
)

// Command flags
var (
	modelName   string
	identifier  string
	scanTimeout int
	alarmLow    float64
	alarmHigh   float64
	alarmOff    bool
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "TP904", "Device model (TP902, TP904)")
	rootCmd.PersistentFlags().StringVar(&identifier, "device", "", "BLE address (TP902) or advertised name prefix (TP904)")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(firmwareCmd)
	rootCmd.AddCommand(alarmCmd)
	rootCmd.AddCommand(setUnitsCmd)
	rootCmd.AddCommand(soundCmd)
	rootCmd.AddCommand(syncTimeCmd)
	rootCmd.AddCommand(snoozeCmd)
	rootCmd.AddCommand(backlightCmd)
	rootCmd.AddCommand(nicknameCmd)
}

// scanCmd surveys BLE advertisements for thermometers
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for TP90x thermometers",
	Long: `Scan BLE advertisements for ThermoPro thermometers.

TP904 devices advertise their model name and show up directly. TP902
devices do not advertise a usable name; note the address of the unnamed
device that appears when the thermometer is powered on and pass it via
--device.`,
	Example: `  # Scan for 10 seconds (default)
  tp90x-ctl scan

  # Quick 3-second scan
  tp90x-ctl scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("Scanning for thermometers (timeout: %ds)...\n\n", scanTimeout)

	found, err := ble.Discover(ctx, nil, time.Duration(scanTimeout)*time.Second, "TP9")
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(found) == 0 {
		fmt.Println("No thermometers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the thermometer is powered on")
		fmt.Println("  - TP902 does not advertise a name; connect with --model TP902 --device <address>")
		fmt.Println("  - Try increasing --timeout")
		return nil
	}

	registry, regErr := config.LoadRegistry()

	fmt.Printf("Found %d device(s):\n\n", len(found))
	for i, d := range found {
		nickname := ""
		if regErr == nil {
			if meta := registry.GetDevice(d.Address); meta != nil && meta.Nickname != "" {
				nickname = " (" + meta.Nickname + ")"
			}
		}
		fmt.Printf("%d. %s%s\n", i+1, d.Name, nickname)
		fmt.Printf("   Address: %s\n", d.Address)
		fmt.Printf("   RSSI:    %d dBm\n\n", d.RSSI)
	}

	fmt.Println("Use 'tp90x-ctl monitor' to stream temperatures")
	return nil
}

// monitorCmd streams periodic temperature broadcasts
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream live temperature readings",
	Long: `Connect to a thermometer and stream its periodic temperature
broadcasts until interrupted. The device clock is synced on connect so
its display shows the correct time.`,
	Example: `  # Monitor the first TP904 in range
  tp90x-ctl monitor

  # Monitor a TP902 by address
  tp90x-ctl monitor --model TP902 --device AA:BB:CC:DD:EE:FF`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	dev, err := openDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	// Keep the display clock honest while we're connected anyway.
	if err := dev.SyncTime(ctx, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: time sync failed: %v\n", err)
	}

	fmt.Printf("Monitoring %s, Ctrl-C to stop.\n\n", dev.Model().Name)

	for {
		select {
		case msg, ok := <-dev.Broadcasts():
			if !ok {
				return fmt.Errorf("connection lost")
			}
			if bc, isBroadcast := msg.(*protocol.Broadcast); isBroadcast {
				fmt.Println(ui.RenderBroadcast(bc))
			}
		case <-ctx.Done():
			fmt.Println("\nStopped.")
			return nil
		}
	}
}

// statusCmd reads device status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device status",
	Long:  `Read the thermometer's display units, beeper setting, and battery level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		status, err := dev.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read status: %w", err)
		}

		fmt.Println(ui.RenderStatus(dev.Model().Name, status))
		return nil
	},
}

// firmwareCmd reads the firmware version
var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Show firmware version",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		fw, err := dev.Firmware(ctx)
		if err != nil {
			return fmt.Errorf("failed to read firmware version: %w", err)
		}

		fmt.Printf("%s firmware %s\n", dev.Model().Name, fw)
		return nil
	},
}

// alarmCmd reads or writes a probe's alarm configuration
var alarmCmd = &cobra.Command{
	Use:   "alarm <channel>",
	Short: "Show or set a probe alarm",
	Long: `Show or set the alarm configuration for one probe channel.

Without flags, the current configuration is read. With --target the probe
alarms when it reaches a single temperature; with --low and --high it
alarms when the reading leaves the range; --off disables it.

Temperatures are in the device's configured display units, tenths resolution.`,
	Example: `  # Show probe 1 alarm
  tp90x-ctl alarm 1

  # Target alarm at 75.0 degrees
  tp90x-ctl alarm 1 --target 75

  # Range alarm between 60.0 and 80.0 degrees
  tp90x-ctl alarm 2 --low 60 --high 80

  # Disable the alarm
  tp90x-ctl alarm 1 --off`,
	Args: cobra.ExactArgs(1),
	RunE: runAlarm,
}

func init() {
	alarmCmd.Flags().Float64Var(&alarmHigh, "target", 0, "Target temperature (target mode)")
	alarmCmd.Flags().Float64Var(&alarmLow, "low", 0, "Low bound (range mode, requires --high)")
	alarmCmd.Flags().Float64Var(&alarmHigh, "high", 0, "High bound (range mode, requires --low)")
	alarmCmd.Flags().BoolVar(&alarmOff, "off", false, "Disable the alarm")
}

func runAlarm(cmd *cobra.Command, args []string) error {
	channel, err := strconv.Atoi(args[0])
	if err != nil || channel < 1 || channel > 255 {
		return fmt.Errorf("invalid channel %q", args[0])
	}

	ctx, stop := signalContext()
	defer stop()

	dev, err := openDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	targetSet := cmd.Flags().Changed("target")
	lowSet := cmd.Flags().Changed("low")
	highSet := cmd.Flags().Changed("high")

	switch {
	case alarmOff:
		cfg := protocol.AlarmConfig{Channel: uint8(channel), Mode: protocol.AlarmOff}
		if err := dev.SetAlarm(ctx, cfg); err != nil {
			return fmt.Errorf("failed to disable alarm: %w", err)
		}
		fmt.Printf("%s Probe %d alarm disabled\n", ui.SuccessMarker, channel)

	case lowSet || highSet:
		if !lowSet || !highSet {
			return fmt.Errorf("range mode requires both --low and --high")
		}
		cfg := protocol.AlarmConfig{
			Channel:   uint8(channel),
			Mode:      protocol.AlarmRange,
			Primary:   protocol.TemperatureFromDegrees(alarmHigh),
			Secondary: protocol.TemperatureFromDegrees(alarmLow),
		}
		if err := dev.SetAlarm(ctx, cfg); err != nil {
			return fmt.Errorf("failed to set range alarm: %w", err)
		}
		fmt.Printf("%s Probe %d range alarm set: %.1f to %.1f\n", ui.SuccessMarker, channel, alarmLow, alarmHigh)

	case targetSet:
		cfg := protocol.AlarmConfig{
			Channel: uint8(channel),
			Mode:    protocol.AlarmTarget,
			Primary: protocol.TemperatureFromDegrees(alarmHigh),
		}
		if err := dev.SetAlarm(ctx, cfg); err != nil {
			return fmt.Errorf("failed to set target alarm: %w", err)
		}
		fmt.Printf("%s Probe %d target alarm set: %.1f\n", ui.SuccessMarker, channel, alarmHigh)

	default:
		cfg, err := dev.Alarm(ctx, uint8(channel))
		if err != nil {
			return fmt.Errorf("failed to read alarm: %w", err)
		}
		fmt.Println(ui.RenderAlarm(cfg))
	}

	return nil
}

// setUnitsCmd sets the display units
var setUnitsCmd = &cobra.Command{
	Use:   "set-units <celsius|fahrenheit>",
	Short: "Set display units",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var units protocol.Units
		switch strings.ToLower(args[0]) {
		case "celsius", "c":
			units = protocol.UnitsCelsius
		case "fahrenheit", "f":
			units = protocol.UnitsFahrenheit
		default:
			return fmt.Errorf("invalid units %q (use celsius or fahrenheit)", args[0])
		}

		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetUnits(ctx, units); err != nil {
			return fmt.Errorf("failed to set units: %w", err)
		}
		fmt.Printf("%s Display units set to %s\n", ui.SuccessMarker, units)
		return nil
	},
}

// soundCmd enables or disables the audible alarm
var soundCmd = &cobra.Command{
	Use:   "sound <on|off>",
	Short: "Enable or disable the audible alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("invalid value %q (use on or off)", args[0])
		}

		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.SetAlarmSound(ctx, enabled); err != nil {
			return fmt.Errorf("failed to set alarm sound: %w", err)
		}
		fmt.Printf("%s Alarm sound %s\n", ui.SuccessMarker, args[0])
		return nil
	},
}

// syncTimeCmd sets the device clock
var syncTimeCmd = &cobra.Command{
	Use:   "sync-time",
	Short: "Sync the device clock to this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		now := time.Now()
		if err := dev.SyncTime(ctx, now); err != nil {
			return fmt.Errorf("failed to sync time: %w", err)
		}
		fmt.Printf("%s Device clock set to %s\n", ui.SuccessMarker, now.Format(time.RFC1123))
		return nil
	},
}

// snoozeCmd silences a ringing alarm
var snoozeCmd = &cobra.Command{
	Use:   "snooze",
	Short: "Silence a ringing alarm until its next trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.Snooze(ctx); err != nil {
			return fmt.Errorf("failed to snooze: %w", err)
		}
		fmt.Printf("%s Alarm snoozed\n", ui.SuccessMarker)
		return nil
	},
}

// backlightCmd lights the LCD
var backlightCmd = &cobra.Command{
	Use:   "backlight",
	Short: "Light the device display",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		dev, err := openDevice(ctx)
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.Backlight(ctx); err != nil {
			return fmt.Errorf("failed to trigger backlight: %w", err)
		}
		fmt.Printf("%s Backlight triggered\n", ui.SuccessMarker)
		return nil
	},
}

// nicknameCmd stores a local nickname for a device address
var nicknameCmd = &cobra.Command{
	Use:   "nickname <address> <name>",
	Short: "Set a local nickname for a device",
	Long: `Store a nickname for a device address in the local configuration.
The nickname is shown in scan output. Nothing is written to the device.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		registry.SetDeviceNickname(args[0], args[1])
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("%s %s is now %q\n", ui.SuccessMarker, args[0], args[1])
		return nil
	},
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openDevice resolves the model and identifier flags, connects over BLE and
// completes the authentication handshake. Preferences from the local config
// registry tune timeouts.
func openDevice(ctx context.Context) (*device.Device, error) {
	model, ok := device.Models[strings.ToUpper(modelName)]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (use TP902 or TP904)", modelName)
	}

	id := identifier
	if id == "" {
		if model.Search == device.SearchByAddress {
			return nil, fmt.Errorf("%s requires --device <address>; run 'tp90x-ctl scan' to find it", model.Name)
		}
		id = model.NamePrefix
	}

	var opts []device.Option
	scanWindow := ble.DefaultScanTimeout

	registry, err := config.LoadRegistry()
	if err == nil && registry.Preferences != nil {
		prefs := registry.Preferences
		if prefs.ScanTimeout > 0 {
			scanWindow = time.Duration(prefs.ScanTimeout) * time.Second
		}
		if prefs.RequestTimeout > 0 {
			opts = append(opts, device.WithRequestTimeout(time.Duration(prefs.RequestTimeout)*time.Second))
		}
		if prefs.AckGraceMillis > 0 {
			opts = append(opts, device.WithAckGrace(time.Duration(prefs.AckGraceMillis)*time.Millisecond))
		}
	}

	var finder device.Finder
	switch model.Search {
	case device.SearchByAddress:
		f := ble.NewAddressFinder()
		f.ScanTimeout = scanWindow
		finder = f
	default:
		f := ble.NewNameFinder()
		f.ScanTimeout = scanWindow
		finder = f
	}

	dev, err := device.Connect(ctx, model, finder, id, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := dev.Authenticate(ctx); err != nil {
		dev.Close()
		return nil, fmt.Errorf("handshake failed: %w", err)
	}

	if registry != nil && model.Search == device.SearchByAddress {
		registry.UpdateDeviceLastSeen(id, model.Name)
		_ = registry.Save()
	}

	return dev, nil
}
