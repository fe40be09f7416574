// Package config provides configuration management for the harness.
//
// The config package loads settings from a clisandbox.yaml file, from
// CLISANDBOX_* environment variables, and from built-in defaults using
// viper. It covers subject binary location, sandbox cleanup policy,
// assertion strategy selection, fuzzing, logging, and the optional MCP
// server transport.
package config
