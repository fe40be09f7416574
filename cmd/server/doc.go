// Package main is the entry point for the clisandbox MCP server.
//
// The server exposes the sandbox harness over the Model Context
// Protocol so agents can create isolated project directories, stage
// input files, run the subject binary, and check generated files
// remotely. Both stdio and HTTP transports are supported.
//
// The application uses Uber's fx framework for dependency injection
// and lifecycle management, with zap for structured logging and viper
// for configuration.
package main
