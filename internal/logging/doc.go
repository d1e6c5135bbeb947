// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stderr when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Stdout is left to the probe report so traces and JSON/TOML output can be
// piped without log lines mixed in.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"probe": "debug",  // Per-module overrides
//			"api":     "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("mymodule")
//	logger.Info("Starting up", "port", 8080)
//	logger.Debug("Details", "config", cfg)
//	logger.Warn("Something unusual", "error", err)
//	logger.Error("Failed", "error", err)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("probe").With("card", card)
//	logger.Info("Probing card")  // Includes card in all logs
//
// # Log Levels
//
//	debug - Verbose debugging information
//	info  - General operational messages
//	warn  - Warning conditions
//	error - Error conditions
//
// # Output Destinations
//
// The system automatically detects available outputs:
//
//	Journal available + stderr available → MultiHandler (both)
//	Journal available only              → JournalHandler
//	Stderr available only               → TextHandler or JSONHandler
//
// Every chain also includes a BufferHandler that keeps recent entries for the
// /api/logs/stream endpoint.
//
// Journal availability is checked via [github.com/coreos/go-systemd/v22/journal.Enabled].
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t alsaprobe              # All alsaprobe logs
//	journalctl -t alsaprobe -f           # Follow live
//	journalctl -t alsaprobe --since "5m" # Last 5 minutes
//	journalctl -t alsaprobe -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t alsaprobe MODULE=probe
//	journalctl -t alsaprobe CARD=1
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	probe = "debug"
//	api = "warn"
//
// SetLevels re-applies levels at runtime when the configuration file changes.
package logging
