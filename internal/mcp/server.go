package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gvilla/kbase/internal/rag"
	"github.com/gvilla/kbase/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes knowledge base tools.
type Server struct {
	index  vectordb.Index
	engine *rag.Engine
	topK   int
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
// engine may be nil when no LLM provider is configured; the ask tool
// then reports that answering is unavailable.
func NewServer(index vectordb.Index, engine *rag.Engine, topK int) *Server {
	s := &Server{
		index:  index,
		engine: engine,
		topK:   topK,
	}

	s.mcp = server.NewMCPServer(
		"kbase",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchKnowledgeBaseTool, s.handleSearchKnowledgeBase)
	s.mcp.AddTool(askKnowledgeBaseTool, s.handleAskKnowledgeBase)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
