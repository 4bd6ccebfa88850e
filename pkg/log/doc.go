// Package log provides flake's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by the standard
// library slog through a bridge handler that feeds our Formatter and Output
// pipeline, so records look the same whichever API produced them.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"), log.Int64("machine_id", 7))
//	l.Info("server started", log.Str("http", ":8080"))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config: level, text or JSON
// formatting, a console, file or null output, key redaction and per-message
// sampling.
//
// # Interop
//
// ToStdLogger adapts a Logger for libraries that want a *log.Logger, and
// RedirectStdLog routes the standard library's default logger (used by
// Pebble) into ours.
package log
