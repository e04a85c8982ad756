// Package logging builds zap loggers. No other package of this module
// imports it.
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development logger (human
// readable, debug level) when debug is true.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, for tests and
// call sites that don't want to thread a *zap.Logger through.
func Nop() *zap.Logger {
	return zap.NewNop()
}
