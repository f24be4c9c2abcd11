// Package mcp exposes the assessment engine as Model Context Protocol tools, resources and
// prompts.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/session"
)

// Dependencies are the components the tools operate on.
type Dependencies struct {
	Catalog  domain.ModuleCatalog
	Sessions *session.Registry
	Profiles domain.ProfileStore
	Reports  domain.ReportRenderer
	Logger   *logrus.Logger
}

// Server represents the SCID-PD MCP server
type Server struct {
	mcpServer *mcp.Server
	deps      Dependencies
	logger    *logrus.Logger
}

// NewServer creates an MCP server with every assessment tool registered.
func NewServer(cfg domain.MCPConfig, deps Dependencies) *Server {
	serverInfo := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(serverInfo, nil),
		deps:      deps,
		logger:    deps.Logger,
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// Start serves MCP over stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves MCP over the given transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("Starting SCID-PD MCP server")
	if err := s.mcpServer.Run(ctx, transport); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Connect attaches a single session over transport without blocking. Used by tests and
// in-process clients.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_modules",
		Description: "List the SCID-PD interview modules, optionally restricted to one cluster (cluster_a, cluster_b, cluster_c).",
	}, s.handleListModules)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_assessment",
		Description: "Start a new personality assessment and return its id.",
	}, s.handleStartAssessment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_assessment",
		Description: "Return the state and running profile of an assessment.",
	}, s.handleGetAssessment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "administer_module",
		Description: "Score one module's responses for an active assessment. Responses are keyed by question id.",
	}, s.handleAdministerModule)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_assessment",
		Description: "Finalize an assessment, optionally attaching clinician notes, and return the profile.",
	}, s.handleCompleteAssessment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "render_report",
		Description: "Render the text report of a completed or in-progress assessment.",
	}, s.handleRenderReport)

	s.logger.WithField("tool_count", 6).Info("Registered MCP tools")
}
