// Package mcp exposes the availability and group handlers as MCP tools.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterTools registers the availability.* and group.* tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerAvailabilityTools(srv, availabilityTools{app: deps.App})
	registerGroupTools(srv, groupTools{app: deps.App})
	return nil
}
