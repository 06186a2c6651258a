// Package mcp exposes a running server to MCP clients: tools to list games
// and features and to read player stats, and the vgl://games and
// vgl://modes resources.
package mcp
