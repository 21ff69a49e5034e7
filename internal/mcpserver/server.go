// Package mcpserver serves the orchestrator operations as MCP tools over SSE,
// so an assistant can start, stop and inspect the research bots.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"botctl/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// Config holds the SSE listener settings.
type Config struct {
	Host    string
	Port    int
	Version string
}

// Server wraps an MCP server and its SSE transport.
type Server struct {
	config Config
	tools  *Tools

	mu        sync.Mutex
	server    *server.MCPServer
	sseServer *server.SSEServer
	done      chan struct{}
}

// NewServer creates an MCP server exposing orch.
func NewServer(config Config, orch Orchestrator) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 3002
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	return &Server{
		config: config,
		tools:  NewTools(orch),
	}
}

// MCPServer builds the MCP server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"botctl",
		s.config.Version,
		server.WithToolCapabilities(false),
	)
	mcpServer.AddTools(s.tools.ServerTools()...)
	return mcpServer
}

// Start starts serving SSE in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return fmt.Errorf("mcp server already started")
	}

	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	s.server = s.MCPServer()
	s.sseServer = server.NewSSEServer(
		s.server,
		server.WithBaseURL("http://"+addr),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)
	s.done = make(chan struct{})

	logging.Info("MCP", "Starting MCP server on %s", addr)

	// Capture sseServer to avoid race condition
	sseServer := s.sseServer
	done := s.done
	go func() {
		defer close(done)
		if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("MCP", err, "SSE server error")
		}
	}()
	return nil
}

// Stop shuts the SSE transport down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	sseServer := s.sseServer
	done := s.done
	s.server = nil
	s.sseServer = nil
	s.done = nil
	s.mu.Unlock()

	if sseServer == nil {
		return nil
	}

	logging.Info("MCP", "Stopping MCP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down SSE server: %w", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
	}
	return nil
}

// Endpoint returns the SSE URL clients connect to.
func (s *Server) Endpoint() string {
	return fmt.Sprintf("http://%s/sse", net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port)))
}
