// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the publishing pipelines as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/supamarker/internal/publisher"
)

// Server wraps the MCP server with the publishing tools.
type Server struct {
	mcp *server.MCPServer
	svc *publisher.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *publisher.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"supamarker",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("publish_post",
		mcp.WithDescription("Publish a local Markdown post: upload it to the storage bucket and upsert its "+
			"metadata row. The file MUST start with YAML frontmatter containing a title. "+
			"Read the format first via get_post_format or the supamarker://post-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the Markdown file on the local disk")),
	), s.publishPost)

	s.mcp.AddTool(mcp.NewTool("delete_post",
		mcp.WithDescription("Delete a published post: remove the stored Markdown object and its metadata row."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Slug of the post (a trailing .md is accepted)")),
		mcp.WithBoolean("soft", mcp.Description("Keep the stored Markdown object and only delete the metadata row")),
	), s.deletePost)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List every post slug and whether it is in the bucket, the table, or both."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the Markdown post format contract. "+
			"Call this before writing a post to publish."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Post Format Contract",
			mcp.WithResourceDescription("Markdown post format accepted by publish_post."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) publishPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Publish(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deletePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Delete(ctx, slug, req.GetBool("soft", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", res.Slug)), nil
}

func (s *Server) listPosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
