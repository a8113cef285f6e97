// Package mcp implements the Model Context Protocol server for the roster
// scheduling engine.
//
// It exposes the same solve/diff/validate capabilities as the HTTP API
// through MCP tools, so MCP-compatible AI agents can drive the scheduler
// directly: propose a roster, inspect how it changed, or ask why a
// constraint fired, without parsing HTTP response envelopes.
package mcp

import (
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/shiftforge/roster/internal/storage"
)

// serverInstructions is sent to every MCP client during the initialize
// handshake, so agents know the tool surface without per-project setup.
const serverInstructions = `You have access to a roster scheduling engine.

TOOLS:
- validate_context: check that an org's people/events/constraints are
  well-formed before attempting a solve. Call this first when authoring or
  editing scheduling data.
- solve_roster: run the solver over an org's events in a date range and
  return assignments, metrics, and violations. The solution is persisted
  and returned with an id.
- diff_solutions: compare two persisted solutions structurally — which
  (event, person) pairs were added or removed.
- explain_violation: look up the violations a persisted solution reported
  for a given constraint key or event id, with human-readable messages.

WORKFLOW: validate_context before solve_roster; solve_roster before
diff_solutions or explain_violation (both need a solution id).`

// Server wraps the MCP server with the solving/storage services it exposes.
type Server struct {
	mcpServer *mcpserver.MCPServer
	db        *storage.DB
	logger    *slog.Logger
}

// New creates and configures a new MCP server with every tool registered.
func New(db *storage.DB, logger *slog.Logger, version string) *Server {
	s := &Server{db: db, logger: logger}

	s.mcpServer = mcpserver.NewMCPServer(
		"roster",
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions(serverInstructions),
	)

	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
