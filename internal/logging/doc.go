// Package logging provides structured logging for the eSCL client and CLI.
//
// This package wraps a process-wide zap logger. It is silent unless a level
// is given explicitly or through the ESCL_LOG_LEVEL environment variable, so
// library code can log freely without polluting CLI output.
//
// # Log Levels
//
//   - Debug: every request/response exchange, raw XML bodies, discovery
//     records that were dropped during correlation
//   - Info: discovered devices, submitted jobs
//   - Warn: non-fatal oddities (unknown enumeration values, empty pages)
//   - Error: failures surfaced to the user
//
// # Usage
//
//	if err := logging.Initialize(""); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("Scan job created", zap.String("job", job.URL()))
//
// Output goes to stderr, in console format or as JSON lines with
// ESCL_LOG_FORMAT=json, so data written to stdout (JSON, YAML, image bytes)
// is never interleaved with log lines.
package logging
