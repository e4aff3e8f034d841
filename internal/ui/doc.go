// Package ui provides terminal rendering for the tp90x-ctl CLI.
//
// This package uses Lipgloss to render styled terminal output for device
// readings. The components follow a "render once and print" pattern: they
// return strings for the command layer to write, no interaction loop.
//
// # Components
//
//   - RenderBroadcast: one streaming line per periodic temperature broadcast
//   - RenderStatus: bordered device summary box (units, beeper, battery)
//   - RenderAlarm: alarm configuration for one probe channel
//
// # Logging Integration
//
// This package expects logging to be controlled via the TP90X_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
