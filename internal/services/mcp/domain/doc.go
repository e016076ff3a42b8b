// Package domain maps MCP tool calls onto session controller operations.
//
// Each tool has an input type, a result type, a *mcp.Tool definition and a
// typed handler. Handlers validate nothing themselves: the controller rejects
// bad input with domain errors, which surface as tool errors.
package domain
