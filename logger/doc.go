// Package logger provides structured logging capabilities.
//
// The logger package sets up the harness's logging system using zap.
// Library code defaults to a no-op logger so tests stay quiet unless a
// caller wires a real one in.
package logger
