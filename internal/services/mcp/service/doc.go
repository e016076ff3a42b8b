// Package service wires the MCP protocol to the session controller.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates tool
// meaning to the handlers in the domain package.
package service
