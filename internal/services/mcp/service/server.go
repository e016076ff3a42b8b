package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName = "dmscreen"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the dmscreen tools.
type Server struct {
	mcpServer *mcp.Server
}

// New registers every tool against session.
func New(session domain.Session, printer *notice.Printer) (*Server, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if printer == nil {
		return nil, errors.New("printer is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range registrationModules(session, printer) {
		module.register(mcpServer)
	}
	return &Server{mcpServer: mcpServer}, nil
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
