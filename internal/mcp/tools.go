package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scholarmind/scholarmind/internal/export"
	"github.com/scholarmind/scholarmind/internal/ranking"
	"github.com/scholarmind/scholarmind/internal/reference"
)

func (s *Server) registerPaperTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "search_papers",
		Description: "Semantic search over the paper corpus. Returns papers ordered by cosine similarity between the query and each title and abstract.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Free-text description of what you are looking for"},
				"limit": {"type": "number", "description": "Maximum number of results (default 15)"}
			},
			"required": ["query"]
		}`),
	}, s.handleSearchPapers)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "recommend_papers",
		Description: "Recommend papers related to a seed paper. Candidates are the 100 most similar papers, re-ranked by 0.7 * similarity + 0.3 * popularity. Never returns the seed.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Id of the seed paper"},
				"limit": {"type": "number", "description": "Maximum number of results (default 3)"}
			},
			"required": ["id"]
		}`),
	}, s.handleRecommendPapers)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "get_paper",
		Description: "Get the full record for a paper by id, along with whether it is saved.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Paper id"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetPaper)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "popular_papers",
		Description: "A sample of the most popular papers in the corpus, for browsing without a query.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Number of papers (default 15)"}
			}
		}`),
	}, s.handlePopularPapers)
}

func (s *Server) registerSavedTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "toggle_saved",
		Description: "Save a paper to this session's reading list, or remove it if already saved. Without an id, toggles the paper last opened with get_paper or recommend_papers. The list is not kept after the server exits.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Paper id (default: the last paper viewed)"}
			}
		}`),
	}, s.handleToggleSaved)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_saved",
		Description: "List the papers saved in this session, along with the session id.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListSaved)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "export_bibtex",
		Description: "Render papers as BibTeX. Without ids, exports the papers saved in this session.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"ids": {"type": "array", "items": {"type": "string"}, "description": "Paper ids (default: saved papers)"},
				"abstract": {"type": "boolean", "description": "Include abstracts"}
			}
		}`),
	}, s.handleExportBibTeX)
}

type searchArgs struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

type idArgs struct {
	ID    string `json:"id"`
	Limit *int   `json:"limit"`
}

type paperView struct {
	reference.Reference
	Saved bool `json:"saved"`
}

func (s *Server) handleSearchPapers(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args searchArgs
	if err := decodeArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	limit := limitOr(args.Limit, s.searchLimit)
	slog.Debug("mcp search", "query", args.Query, "limit", limit)

	results, err := s.engine.SemanticSearch(ctx, args.Query, limit)
	if err != nil {
		return toolError("search failed: %v", err), nil
	}
	return jsonResult(results)
}

func (s *Server) handleRecommendPapers(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args idArgs
	if err := decodeArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID == "" {
		return toolError("id is required"), nil
	}

	limit := limitOr(args.Limit, s.recommendLimit)
	results, err := s.engine.RecommendByID(args.ID, limit)
	if err != nil {
		if errors.Is(err, ranking.ErrInvalidIndex) {
			return toolError("paper not found: %s", args.ID), nil
		}
		return toolError("recommend failed: %v", err), nil
	}
	s.session.Select(args.ID)
	return jsonResult(results)
}

func (s *Server) handleGetPaper(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args idArgs
	if err := decodeArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	ref, err := s.engine.Corpus().Lookup(args.ID)
	if err != nil {
		return toolError("paper not found: %s", args.ID), nil
	}
	s.session.Select(args.ID)
	return jsonResult(paperView{Reference: ref, Saved: s.session.Saved.Has(args.ID)})
}

func (s *Server) handlePopularPapers(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit *int `json:"limit"`
	}
	if err := decodeArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	limit := limitOr(args.Limit, ranking.DefaultPopularCount)
	results, err := ranking.Popular(s.engine.Corpus(), ranking.DefaultPopularPool, limit, s.rng)
	if err != nil {
		return toolError("popular failed: %v", err), nil
	}
	return jsonResult(results)
}

func (s *Server) handleToggleSaved(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args idArgs
	if err := decodeArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	id := args.ID
	if id == "" {
		selected, ok := s.session.Selected()
		if !ok {
			return toolError("id is required when no paper has been viewed"), nil
		}
		id = selected
	}
	if _, ok := s.engine.Corpus().Row(id); !ok {
		return toolError("paper not found: %s", id), nil
	}

	saved := s.session.Saved.Toggle(id)
	return jsonResult(struct {
		Session string `json:"session"`
		ID      string `json:"id"`
		Saved   bool   `json:"saved"`
		Count   int    `json:"count"`
	}{s.session.ID, id, saved, s.session.Saved.Len()})
}

type savedList struct {
	Session string                `json:"session"`
	Papers  []reference.Reference `json:"papers"`
}

func (s *Server) handleListSaved(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	c := s.engine.Corpus()
	papers := make([]reference.Reference, 0, s.session.Saved.Len())
	for _, id := range s.session.Saved.IDs() {
		ref, err := c.Lookup(id)
		if err != nil {
			continue
		}
		papers = append(papers, ref)
	}
	return jsonResult(savedList{Session: s.session.ID, Papers: papers})
}

func (s *Server) handleExportBibTeX(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		IDs      []string `json:"ids"`
		Abstract bool     `json:"abstract"`
	}
	if err := decodeArgs(req, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	ids := args.IDs
	if len(ids) == 0 {
		ids = s.session.Saved.IDs()
	}
	if len(ids) == 0 {
		return toolError("no ids given and no saved papers"), nil
	}

	refs := make([]reference.Reference, 0, len(ids))
	for _, id := range ids {
		ref, err := s.engine.Corpus().Lookup(id)
		if err != nil {
			return toolError("paper not found: %s", id), nil
		}
		refs = append(refs, ref)
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: export.ToBibTeXList(refs, args.Abstract)}},
	}, nil
}

// decodeArgs unmarshals tool arguments, treating absent arguments as empty.
func decodeArgs(req *gomcp.CallToolRequest, v interface{}) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func limitOr(limit *int, def int) int {
	if limit == nil {
		return def
	}
	return *limit
}

func jsonResult(v interface{}) (*gomcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("encoding result: %v", err), nil
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(data)}},
	}, nil
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
