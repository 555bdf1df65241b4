// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the search service as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wheelclass/wheelclass-mcp/internal/search"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "wheelclass-mcp"

// NewServer returns an MCP server with every tool registered.
func NewServer(svc *search.Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	t := NewTools(svc)
	mcp.AddTool(server, MetadataFindSimilarClasses, t.FindSimilarClasses)
	mcp.AddTool(server, MetadataListDataClasses, t.ListDataClasses)
	mcp.AddTool(server, MetadataDescribeClass, t.DescribeClass)
	mcp.AddTool(server, MetadataCompareFieldSets, t.CompareFieldSets)
	return server
}
