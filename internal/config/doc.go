// Package config provides user configuration management for the tp90x tooling.
//
// This package manages a YAML-based configuration file that stores user-defined
// metadata for ThermoPro thermometers, including nicknames, probe labels, and
// application preferences. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/tp90x/config.yaml or $HOME/.config/tp90x/config.yaml
//   - macOS: $HOME/.config/tp90x/config.yaml
//   - Windows: %LOCALAPPDATA%\tp90x\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update device metadata
//	registry.SetDeviceNickname("AA:BB:CC:DD:EE:FF", "Backyard Smoker")
//	registry.SetProbeLabel("AA:BB:CC:DD:EE:FF", 1, "Brisket", "")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
