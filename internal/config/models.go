package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for thermometers and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by BLE address
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents user-defined metadata for a single thermometer.
// This is keyed by the device's BLE address in the Registry.
type Device struct {
	Nickname string             `yaml:"nickname,omitempty"`  // User-friendly name
	Model    string             `yaml:"model,omitempty"`     // "TP902" or "TP904"
	LastSeen time.Time          `yaml:"last_seen,omitempty"` // Last discovery/connection time
	Probes   map[int]*ProbeMeta `yaml:"probes,omitempty"`    // Probe metadata (keyed by channel 1..N)
}

// ProbeMeta represents user-defined metadata for a single probe channel.
// This is purely client-side information - the thermometer doesn't store labels.
type ProbeMeta struct {
	Label string `yaml:"label"`          // User-defined label (e.g., "Brisket")
	Icon  string `yaml:"icon,omitempty"` // Optional emoji/icon for display
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	ScanTimeout    int    `yaml:"scan_timeout"`     // BLE scan timeout in seconds
	RequestTimeout int    `yaml:"request_timeout"`  // Command reply timeout in seconds
	AckGraceMillis int    `yaml:"ack_grace_millis"` // Silence window for unconfirmed writes
	Units          string `yaml:"units,omitempty"`  // Preferred display units: "celsius" or "fahrenheit"
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			ScanTimeout:    10,
			RequestTimeout: 5,
			AckGraceMillis: 500,
		},
	}
}

// GetDevice retrieves device metadata by BLE address.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(address string) *Device {
	return r.Devices[address]
}

// EnsureDevice ensures a device entry exists in the registry.
// If the device doesn't exist, creates a new entry with default values.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(address string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[address]; exists {
		return device
	}

	// Create new device entry
	device := &Device{
		Probes: make(map[int]*ProbeMeta),
	}
	r.Devices[address] = device
	return device
}

// UpdateDeviceLastSeen updates the last seen timestamp and model for a device.
func (r *Registry) UpdateDeviceLastSeen(address, model string) {
	device := r.EnsureDevice(address)
	device.LastSeen = time.Now()
	if model != "" {
		device.Model = model
	}
}

// SetProbeLabel sets or updates the probe metadata for a device.
func (r *Registry) SetProbeLabel(address string, channel int, label, icon string) {
	device := r.EnsureDevice(address)

	if device.Probes == nil {
		device.Probes = make(map[int]*ProbeMeta)
	}

	device.Probes[channel] = &ProbeMeta{
		Label: label,
		Icon:  icon,
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(address, nickname string) {
	device := r.EnsureDevice(address)
	device.Nickname = nickname
}
