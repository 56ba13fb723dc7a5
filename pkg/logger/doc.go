// Package logger provides a structured logging interface for comicdl.
//
// It wraps zerolog with a small API:
//   - Levels: Debug, Info, Warn, Error
//   - Structured fields via WithField, WithFields and WithError
//   - Pretty console output on stderr
//   - Optional JSON file output rotated by lumberjack
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("date", "1989-04-16").Info("Download completed")
//
// Tests can use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
