// Package logger builds configured *slog.Logger instances from environment
// driven settings: JSON output for production aggregation, text for
// development. Everything in this module logs through slog; this package
// only decides the handler.
package logger
