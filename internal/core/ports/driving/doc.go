// Package driving holds the interfaces the CLI, TUI and MCP server call.
// Everything here is implemented in internal/core/services.
package driving
