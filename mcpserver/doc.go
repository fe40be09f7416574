// Package mcpserver provides the Model Context Protocol (MCP) server
// implementation.
//
// The mcpserver package exposes sandbox operations as MCP tools so an
// agent can drive CLI tests remotely: create_project, stage_file,
// run_command, check_file, and close_project. It uses the
// mark3labs/mcp-go library for the protocol details and keeps a
// registry of live projects keyed by their identifiers.
package mcpserver
