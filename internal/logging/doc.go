// Package logging provides structured logging for the wemo tools.
//
// This package wraps a global zap logger. Logging is silent unless a level
// is set with the --log-level flag or the WEMO_LOG_LEVEL environment
// variable, so library code can log freely without polluting CLI output.
//
// # Log Levels
//
//   - Debug: skipped devices, raw MQTT payloads, failed requests
//   - Info: discovery results, delivered commands, API requests
//   - Warn: non-success responses from devices
//   - Error: bridge and server failures
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in zap's console format.
package logging
