// Package mcpserver exposes transcription history to MCP clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jwulff/memo/internal/history"
)

const defaultLimit = 20

// New builds an MCP server with the history tools registered.
func New(store *history.Store, version string) *server.MCPServer {
	s := server.NewMCPServer("memo", version, server.WithToolCapabilities(false))
	h := &handlers{store: store}

	s.AddTool(mcp.NewTool("list_transcriptions",
		mcp.WithDescription("List saved transcriptions, newest first. Returns id, date, media type and preview."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of transcriptions to return (default 20)")),
	), h.list)

	s.AddTool(mcp.NewTool("get_transcription",
		mcp.WithDescription("Get the full text of one transcription by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Transcription id from list_transcriptions")),
	), h.get)

	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(store *history.Store, version string) error {
	return server.ServeStdio(New(store, version))
}

type handlers struct {
	store *history.Store
}

type summary struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	MediaType string `json:"mediaType"`
	Preview   string `json:"preview"`
}

func (h *handlers) list(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}

	records, err := h.store.List(ctx)
	if errors.Is(err, history.ErrEmpty) {
		return mcp.NewToolResultText("No transcription history yet."), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) > limit {
		records = records[:limit]
	}

	out := make([]summary, len(records))
	for i, r := range records {
		out[i] = summary{ID: r.ID, Date: r.Date, MediaType: string(r.MediaType), Preview: r.Preview}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode summaries: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *handlers) get(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := h.store.Lookup(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
