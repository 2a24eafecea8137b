// Package mcpserver exposes the collection and ingestion services over the
// Model Context Protocol so AI assistants can drive them directly.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lihongwen/pgvector-kit/internal/app"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP front-end over the shared application graph.
type Server struct {
	app    *app.App
	server *mcp.Server
}

// NewServer creates the MCP server and registers its tools.
func NewServer(a *app.App) *Server {
	impl := &mcp.Implementation{
		Name:    "pgvector-kit",
		Version: Version,
	}

	s := &Server{
		app:    a,
		server: mcp.NewServer(impl, nil),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
