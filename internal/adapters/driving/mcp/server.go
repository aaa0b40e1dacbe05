package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName     = "semsearch"
	defaultVersion = "dev"

	instructions = "Answers questions from the user's indexed documents. " +
		"Use ask for a grounded answer with sources and search for raw passages. " +
		"If ask reports no relevant documents, suggest ingesting files first."

	shutdownGrace = 5 * time.Second
)

// Server exposes the index to MCP clients over stdio or streamable HTTP.
type Server struct {
	ports *Ports
	mcp   *mcp.Server
}

// Option configures a Server.
type Option func(*mcp.Implementation)

// WithVersion sets the version reported during the MCP handshake.
func WithVersion(v string) Option {
	return func(impl *mcp.Implementation) {
		if v != "" {
			impl.Version = v
		}
	}
}

// NewServer registers the tools and resources backed by ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{Name: serverName, Version: defaultVersion}
	for _, opt := range opts {
		opt(impl)
	}

	s := &Server{
		ports: ports,
		mcp:   mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves a single client on stdin/stdout until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the streamable HTTP transport. Every session shares
// the same tools.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

// RunHTTP listens on addr and serves until ctx ends.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts HTTP connections on ln. Cancelling ctx shuts the server
// down gracefully and Serve returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
