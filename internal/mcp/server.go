// Package mcp exposes the ranking engine to AI agents over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scholarmind/scholarmind/internal/library"
	"github.com/scholarmind/scholarmind/internal/ranking"
)

// ToolNames lists the tools a Server registers, in registration order.
var ToolNames = []string{
	"search_papers",
	"recommend_papers",
	"get_paper",
	"popular_papers",
	"toggle_saved",
	"list_saved",
	"export_bibtex",
}

// Server wraps the MCP server with a ranking engine and one browse session.
// The session's saved set lives only as long as the process.
type Server struct {
	mcp     *gomcp.Server
	engine  *ranking.Engine
	session *library.Session
	rng     *rand.Rand

	searchLimit    int
	recommendLimit int
}

// ServerOption configures optional Server settings.
type ServerOption func(*Server)

// WithLimits sets the default result counts for search and recommendations.
func WithLimits(search, recommend int) ServerOption {
	return func(s *Server) {
		s.searchLimit = search
		s.recommendLimit = recommend
	}
}

// WithRand sets the source used to sample the popular feed.
// A nil rng returns the most popular papers in order.
func WithRand(rng *rand.Rand) ServerOption {
	return func(s *Server) {
		s.rng = rng
	}
}

// NewServer creates an MCP server exposing the paper and saved-list tools.
func NewServer(engine *ranking.Engine, version string, opts ...ServerOption) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("ranking engine is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "scholarmind",
			Version: version,
		},
		nil,
	)

	now := uint64(time.Now().UnixNano())
	s := &Server{
		mcp:            mcpServer,
		engine:         engine,
		session:        library.NewSession(),
		rng:            rand.New(rand.NewPCG(now, now>>1)),
		searchLimit:    15,
		recommendLimit: 3,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerPaperTools()
	s.registerSavedTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
