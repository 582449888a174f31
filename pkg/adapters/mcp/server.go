// Package mcp exposes the public directory and the onboarding schema to
// model-driven clients over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vicinitylabs/vicinity/pkg/directory"
	"github.com/vicinitylabs/vicinity/pkg/schema"
)

// Server wraps the directory service and exposes it as an MCP Server.
type Server struct {
	directory *directory.Service
	registry  *schema.Registry
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(dir *directory.Service, registry *schema.Registry, version string) *Server {
	s := &Server{
		directory: dir,
		registry:  registry,
		mcpServer: server.NewMCPServer("vicinity-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: search_listings
	s.mcpServer.AddTool(mcp.NewTool("search_listings",
		mcp.WithDescription("Search approved business listings. Featured listings sort first."),
		mcp.WithString("query", mcp.Description("Substring match on name and description (optional)")),
		mcp.WithString("industry", mcp.Description("Exact industry filter (optional)")),
		mcp.WithBoolean("featured_only", mcp.Description("Restrict to featured listings (optional)")),
	), s.handleSearchListings)

	// TOOL: get_listing
	s.mcpServer.AddTool(mcp.NewTool("get_listing",
		mcp.WithDescription("Fetch one approved listing by its slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Listing slug, e.g. acme-corp")),
	), s.handleGetListing)

	// TOOL: onboarding_schema
	s.mcpServer.AddTool(mcp.NewTool("onboarding_schema",
		mcp.WithDescription("Describe the onboarding wizard: steps, required and optional fields."),
	), s.handleOnboardingSchema)
}

func (s *Server) handleSearchListings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, _ := args["query"].(string)
	industry, _ := args["industry"].(string)
	featuredOnly, _ := args["featured_only"].(bool)

	results, err := s.directory.Search(ctx, directory.SearchFilter{
		Query:        query,
		Industry:     industry,
		FeaturedOnly: featuredOnly,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(results)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetListing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, ok := request.GetArguments()["slug"].(string)
	if !ok || slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}

	listing, err := s.directory.GetBySlug(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(listing)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleOnboardingSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.registry.Steps())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: vicinity://schema
	s.mcpServer.AddResource(mcp.NewResource("vicinity://schema", "Onboarding Step Schema",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.registry.Steps())
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "vicinity://schema",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
