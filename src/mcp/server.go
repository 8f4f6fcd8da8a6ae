// Package mcp exposes devmcp's build tools, project resources and prompts over MCP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"devmcp-agent/src/build"
	"devmcp-agent/src/logger"
	"devmcp-agent/src/store"
)

// ServerName is the implementation name reported to clients.
const ServerName = "devmcp"

// Options configures a Server.
type Options struct {
	// Orchestrator runs builds for run_build. Required.
	Orchestrator *build.Orchestrator
	// Results backs the project://build-log resource. Required.
	Results store.ResultStore
	// WorkDir is the base directory for project:// file resources.
	WorkDir string
	Version string
	Logger  logger.Logger
}

// Server is the MCP server for devmcp.
type Server struct {
	mcpServer    *server.MCPServer
	orchestrator *build.Orchestrator
	results      store.ResultStore
	workDir      string
	logger       logger.Logger
}

// NewServer creates a new MCP server with every tool, resource and prompt registered.
func NewServer(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewSilentLogger()
	}

	s := server.NewMCPServer(
		ServerName,
		opts.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)
	s.EnableSampling()

	srv := &Server{
		mcpServer:    s,
		orchestrator: opts.Orchestrator,
		results:      opts.Results,
		workDir:      opts.WorkDir,
		logger:       opts.Logger,
	}
	srv.registerTools()
	srv.registerResources()
	srv.registerPrompts()

	return srv
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[MCP] Listening on %s", addr)
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http transport: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http transport: %w", err)
		}
		return nil
	}
}
