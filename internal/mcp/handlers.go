package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/ops"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/search"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db         *sql.DB
	searcher   Searcher
	prefs      *prefs.Store
	fallback   string
	exportsDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	h := &Handlers{
		db:         deps.DB,
		searcher:   deps.Searcher,
		prefs:      deps.Prefs,
		exportsDir: deps.ExportsDir,
		fallback:   i18n.Default,
	}
	if deps.Config != nil {
		h.fallback = i18n.Resolve(deps.Config.DefaultLanguage)
	}
	return h
}

// Request types for each tool

// SearchRequest represents the arguments for howto_search.
type SearchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

// FollowUpRequest represents the arguments for howto_follow_up.
type FollowUpRequest struct {
	OriginalQuery string `json:"original_query"`
	FollowUpQuery string `json:"follow_up_query"`
	Language      string `json:"language,omitempty"`
}

// SaveRequest represents the arguments for saved_save.
type SaveRequest struct {
	Query        string   `json:"query"`
	Summary      string   `json:"summary,omitempty"`
	Title        string   `json:"title,omitempty"`
	Tools        []string `json:"tools,omitempty"`
	TimeEstimate string   `json:"time_estimate,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// ListRequest represents the arguments for saved_list.
type ListRequest struct {
	IncludeSummary bool `json:"include_summary,omitempty"`
}

// FetchRequest represents the arguments for saved_fetch.
type FetchRequest struct {
	ID    string `json:"id,omitempty"`
	Query string `json:"query,omitempty"`
}

// DeleteRequest represents the arguments for saved_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for saved_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for saved_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// language returns the explicit code if given, else the saved preference.
func (h *Handlers) language(explicit string) string {
	if explicit != "" {
		return i18n.Resolve(explicit)
	}
	if h.prefs != nil {
		return h.prefs.Language()
	}
	return h.fallback
}

// Handler implementations

// HandleSearch handles the howto_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.searcher.Search(ctx, search.SearchRequest{
		Query:    input.Query,
		Language: h.language(input.Language),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFollowUp handles the howto_follow_up tool call.
func (h *Handlers) HandleFollowUp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FollowUpRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.searcher.FollowUp(ctx, search.FollowUpRequest{
		OriginalQuery: input.OriginalQuery,
		FollowUpQuery: input.FollowUpQuery,
		Language:      h.language(input.Language),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSave handles the saved_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveTutorial(ctx, h.db, ops.SaveInput{
		Query:        input.Query,
		Summary:      input.Summary,
		Title:        input.Title,
		Tools:        input.Tools,
		TimeEstimate: input.TimeEstimate,
		Difficulty:   input.Difficulty,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the saved_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.IncludeSummary {
		return successResult(ops.ListSaved(ctx, h.db))
	}

	items := ops.ListSummaries(ctx, h.db)
	return successResult(map[string]any{
		"items": items,
		"total": len(items),
	})
}

// HandleFetch handles the saved_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchSaved(ctx, h.db, ops.FetchInput{
		ID:    input.ID,
		Query: input.Query,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the saved_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.DeleteSaved(ctx, h.db, input.ID))
}

// HandleExport handles the saved_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.exportsDir, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the saved_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.exportsDir, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal and storage details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	hErr, ok := errors.As(err)
	if !ok {
		hErr = errors.NewInternal(err)
	}

	errorObj := map[string]any{
		"code":    hErr.Code,
		"message": hErr.Message,
		"status":  hErr.Status,
	}
	switch hErr.Code {
	case errors.ErrInternal, errors.ErrStorage:
		errorObj["message"] = "an internal error occurred"
	default:
		if hErr.Details != nil {
			errorObj["details"] = hErr.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
