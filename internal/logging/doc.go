// Package logging provides structured logging for the tp90x tooling.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the module. It provides both general logging
// functions and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
//   - Debug: Detailed debugging info (frame hex dumps, notification traffic)
//   - Info: Normal operations (discovery, connections, state changes)
//   - Warn: Non-fatal issues (malformed notifications, retries)
//   - Error: Fatal issues (transport failures, startup errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("device found",
//	    zap.String("address", "AA:BB:CC:DD:EE:FF"),
//	    zap.String("name", "TP904"),
//	)
//
// # Specialized Logging
//
// Frame traffic:
//
//	logging.LogFrame("send", opcode, raw)
//	logging.LogFrame("recv", opcode, raw)
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set TP90X_LOG_LEVEL
// to enable it, or initialize explicitly:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
