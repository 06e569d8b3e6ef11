// Package mcp runs the MCP server over the tools in adapter/mcp.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	mcplocal "github.com/felixgeelhaar/calcompare/adapter/mcp"
	"github.com/felixgeelhaar/calcompare/pkg/config"
	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"
)

// NewServer builds an MCP server with every calcompare tool registered.
func NewServer(app *cli.App) (*mcpgo.Server, error) {
	if app == nil {
		return nil, errors.New("CLI app is required")
	}
	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    "calcompare-mcp",
		Version: cli.Version,
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	})
	if err := mcplocal.RegisterTools(srv, mcplocal.ToolDependencies{App: app}); err != nil {
		return nil, err
	}
	return srv, nil
}

// Serve runs the MCP server on cfg.MCPAddr until ctx is canceled.
func Serve(ctx context.Context, cfg *config.Config, app *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	srv, err := NewServer(app)
	if err != nil {
		return err
	}

	adapter := mcpLogger{logger: logger}
	stack := middleware.DefaultStack(adapter)
	if cfg.MCPAuthToken != "" {
		authenticator := middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
			cfg.MCPAuthToken: {ID: "mcp", Name: "mcp"},
		}))
		stack = append([]middleware.Middleware{middleware.Auth(authenticator, middleware.WithAuthLogger(adapter))}, stack...)
	} else {
		logger.Warn("MCP_AUTH_TOKEN not set; requests are unauthenticated")
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(stack...))
}

// mcpLogger routes middleware logs into slog.
type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldArgs(fields)...)
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldArgs(fields)...)
}

func fieldArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
