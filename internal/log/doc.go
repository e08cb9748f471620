// Package log provides logging functionality built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Compact formatting of floating-point attributes (p-values, pulls,
//     significances) so log lines stay readable
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("check failed",
//	    "key", "track/pt",
//	    "pvalue", 0.00123456789, // logged as 0.001235
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
