package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"worldsheet/internal/implication"
	"worldsheet/internal/linking"
)

// Store is the worksheet access the tools need beyond the link service.
type Store interface {
	linking.WorksheetStore
}

type Server struct {
	links  *linking.Service
	engine *implication.Engine
	db     Store
	logger *zap.Logger
	mcp    *sdk.Server
}

func NewServer(links *linking.Service, engine *implication.Engine, db Store, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		links:  links,
		engine: engine,
		db:     db,
		logger: logger,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldsheet",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.logger.Info("mcp server starting")
	return s.mcp.Run(ctx, transport)
}

func (s *Server) fail(tool string, err error) error {
	s.logger.Warn("tool call failed", zap.String("tool", tool), zap.Error(err))
	return err
}
