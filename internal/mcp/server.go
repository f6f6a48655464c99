package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mfenderov/llmsref/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Loader returns the current reference entries in artifact order.
type Loader func(ctx context.Context) ([]models.Entry, error)

// Searcher runs a full-text query and looks up indexed entries by ID.
// *elasticsearch.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Entry, error)
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
}

// Server exposes the reference entries as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	load      Loader
	searcher  Searcher // nil falls back to in-memory matching
}

// NewServer creates a new MCP server with entry tools. searcher may be nil.
func NewServer(config Config, load Loader, searcher Searcher) (*Server, error) {
	if load == nil {
		return nil, fmt.Errorf("entry loader is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		load:      load,
		searcher:  searcher,
	}

	listTool := mcp.NewTool("list_entries",
		mcp.WithDescription("List documentation reference entries in reading order. Each entry has a title, source path, public URL and a dense summary."),
		mcp.WithString("prefix",
			mcp.Description("Only return entries whose source path starts with this prefix, e.g. docs/apps/"),
		),
	)
	mcpServer.AddTool(listTool, s.listHandler)

	getTool := mcp.NewTool("get_entry",
		mcp.WithDescription("Get a single reference entry by ID or source path"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry ID or source path, e.g. docs/apps/overview.md"),
		),
	)
	mcpServer.AddTool(getTool, s.getHandler)

	searchTool := mcp.NewTool("search_entries",
		mcp.WithDescription("Search reference entries by query over titles and summaries"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	return s, nil
}

// listHandler handles the list_entries tool call.
func (s *Server) listHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.handleList(ctx, req.GetString("prefix", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(entries)
}

// getHandler handles the get_entry tool call.
func (s *Server) getHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	entry, err := s.handleGet(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get entry failed: %v", err)), nil
	}
	if entry == nil {
		return mcp.NewToolResultError(fmt.Sprintf("entry not found: %s", id)), nil
	}
	return jsonResult(entry)
}

// searchHandler handles the search_entries tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", 10)

	entries, err := s.handleSearch(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(entries)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// handleList returns the entries under prefix.
func (s *Server) handleList(ctx context.Context, prefix string) ([]models.Entry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return entries, nil
	}
	out := []models.Entry{}
	for _, e := range entries {
		if strings.HasPrefix(e.Path, prefix) {
			out = append(out, e)
		}
	}
	return out, nil
}

// handleGet finds an entry by ID or source path in the loaded entries.
// Unknown IDs are looked up in the index when a searcher is configured.
func (s *Server) handleGet(ctx context.Context, id string) (*models.Entry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id || entries[i].Path == id {
			return &entries[i], nil
		}
	}
	if s.searcher == nil {
		return nil, nil
	}
	entry, err := s.searcher.GetEntry(ctx, id)
	if err != nil {
		slog.Warn("index lookup failed", "id", id, "error", err)
		return nil, nil
	}
	return entry, nil
}

// handleSearch queries the searcher when configured, otherwise matches
// query terms against the loaded entries.
func (s *Server) handleSearch(ctx context.Context, query string, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	if s.searcher != nil {
		entries, err := s.searcher.Search(ctx, query, limit)
		if err == nil {
			return entries, nil
		}
		slog.Warn("index search failed, falling back to in-memory match", "error", err)
	}

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Match(entries, query, limit), nil
}

// Match ranks entries by how many distinct query terms appear in their
// title or summary, case-insensitively. Title hits count double. Entries
// without any hit are dropped; ties keep artifact order.
func Match(entries []models.Entry, query string, limit int) []models.Entry {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []models.Entry{}
	}

	type scored struct {
		entry models.Entry
		score int
	}
	var hits []scored
	for _, e := range entries {
		title := strings.ToLower(e.Title)
		summary := strings.ToLower(e.Summary)
		score := 0
		for _, term := range terms {
			if strings.Contains(title, term) {
				score += 2
			}
			if strings.Contains(summary, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{entry: e, score: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	out := make([]models.Entry, 0, min(limit, len(hits)))
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, h.entry)
	}
	return out
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
