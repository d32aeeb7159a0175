// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Fehu tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/fehu/internal/receiptservice"
)

// Server wraps the MCP server with Fehu tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *receiptservice.Service
	owner string
}

// New creates a new MCP server with all Fehu tools registered. Tool calls
// run against the given owner key.
func New(svc *receiptservice.Service, owner string) *Server {
	s := &Server{svc: svc}
	if owner == "" {
		owner = "default"
	}
	s.owner = owner

	s.mcp = server.NewMCPServer(
		"Fehu",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("ask_receipts",
		mcp.WithDescription("Answer a free-text question about stored receipts, "+
			"e.g. totals, vendors, months, or individual items."),
		mcp.WithString("question", mcp.Required(), mcp.Description("Natural-language question about spending")),
	), s.askReceipts)

	s.mcp.AddTool(mcp.NewTool("list_receipts",
		mcp.WithDescription("List all stored receipts, most recent date first."),
	), s.listReceipts)

	s.mcp.AddTool(mcp.NewTool("receipt_items",
		mcp.WithDescription("List the line items of one receipt."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Receipt ID")),
	), s.receiptItems)

	s.mcp.AddTool(mcp.NewTool("monthly_summary",
		mcp.WithDescription("Per-month spending totals, newest month first."),
	), s.monthlySummary)

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

func (s *Server) askReceipts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := s.svc.Ask(ctx, s.owner, question)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(answer), nil
}

func (s *Server) listReceipts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.svc.ListReceipts(ctx, s.owner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(recs) == 0 {
		return mcp.NewToolResultText("no receipts stored"), nil
	}
	out, _ := json.MarshalIndent(recs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) receiptItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.ListItems(ctx, s.owner, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("receipt %d: %v", int64(id), err)), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no items on this receipt"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) monthlySummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	months, err := s.svc.MonthlySummary(ctx, s.owner)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(months) == 0 {
		return mcp.NewToolResultText("no spending recorded"), nil
	}
	out, _ := json.MarshalIndent(months, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
