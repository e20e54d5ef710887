// Package cmd implements the command-line interface for dentalcal.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide appointment tools for AI voice agents
//   - rest: Start the plain HTTP/REST server for web frontends
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
