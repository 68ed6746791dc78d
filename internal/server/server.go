// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/horizonsrc/sampleqr/internal/config"
	"github.com/horizonsrc/sampleqr/internal/tool"
)

// Version is reported to MCP clients.
var Version = "dev"

// Server wraps the MCP SDK server with the sample payload tools registered.
type Server struct {
	MCPServer *mcp.Server
	logger    *zap.Logger
}

func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tools, err := tool.NewToolset(cfg, logger.Named("tool"))
	if err != nil {
		return nil, err
	}

	s := &Server{
		MCPServer: mcp.NewServer(&mcp.Implementation{Name: "sampleqr", Version: Version}, nil),
		logger:    logger,
	}
	mcp.AddTool(s.MCPServer, tool.MetadataExtractSampleFields, tools.ExtractSampleFields)
	mcp.AddTool(s.MCPServer, tool.MetadataComposeSamplePayload, tools.ComposeSamplePayload)
	return s, nil
}

// ServeStdio blocks serving MCP over stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("starting sampleqr MCP server over stdio")
	return s.MCPServer.Run(ctx, &mcp.StdioTransport{})
}
