// Package logging configures the structured slog logger used across extpack.
//
// Logs are JSON lines on stderr. Every record carries the module and version
// attributes, and debug level adds the source location:
//
//	{"time":"...","level":"INFO","msg":"build complete","module":"extpack","version":"v1.0.0","packs":2}
//
// Supported levels (case-insensitive) are debug, info, warn (or warning) and
// error; anything else maps to info. The CLI reads the level from --log-level
// or the LOG_LEVEL environment variable and installs the default logger
// before any command runs:
//
//	logging.SetDefaultStructuredLoggerWithLevel("extpack", version, level)
//
// Packages then log through slog with key/value attributes:
//
//	slog.Info("pack generated", "ide", ide, "language", language, "files", n)
//
// A logger that is not installed as the default can be created with
// NewStructuredLogger.
package logging
