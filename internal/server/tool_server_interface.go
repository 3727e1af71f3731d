package server

// ToolServer defines the interface for the MCP server that handles
// note and automation tool calls from MCP clients.
type ToolServer interface {
	// Initialize registers tools, resources and prompts.
	Initialize() error

	// Start starts the MCP server on the stdio transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
