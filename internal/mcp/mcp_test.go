package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/ops"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/provider"
	"github.com/hpungsan/howto/internal/search"
)

const testSummary = `Tying a tie takes practice.

Tools needed: tie, mirror
Time: 5 minutes
Difficulty: Easy`

type fakeSearcher struct {
	err        error
	lastSearch search.SearchRequest
	lastFollow search.FollowUpRequest
}

func (f *fakeSearcher) Search(_ context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	f.lastSearch = req
	if f.err != nil {
		return nil, f.err
	}
	return &search.SearchResponse{
		Videos:   []provider.Video{{ID: "v1", Title: "Tie Tutorial"}},
		Articles: []provider.Article{{ID: "a1", Title: "Knot Guide"}},
		Summary:  testSummary,
	}, nil
}

func (f *fakeSearcher) FollowUp(_ context.Context, req search.FollowUpRequest) (*search.FollowUpResponse, error) {
	f.lastFollow = req
	if f.err != nil {
		return nil, f.err
	}
	return &search.FollowUpResponse{Answer: "Use a double knot."}, nil
}

// testSetup creates a temporary database and handler dependencies.
func testSetup(t *testing.T) (Deps, *fakeSearcher) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	store := prefs.New(database, cfg.DefaultLanguage)
	store.Load(context.Background())

	fs := &fakeSearcher{}
	return Deps{
		DB:         database,
		Config:     cfg,
		Searcher:   fs,
		Prefs:      store,
		ExportsDir: ops.ExportsDir(tmpDir),
		Version:    "test",
	}, fs
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleSearch(t *testing.T) {
	deps, fs := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, err := h.HandleSearch(ctx, makeRequest(map[string]any{"query": "tie a tie", "language": "pt-BR"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	if output["summary"] != testSummary {
		t.Errorf("summary = %v", output["summary"])
	}
	if videos, _ := output["videos"].([]any); len(videos) != 1 {
		t.Errorf("videos = %v", output["videos"])
	}
	if fs.lastSearch.Language != "pt" {
		t.Errorf("Language = %q, want pt", fs.lastSearch.Language)
	}
}

func TestHandleSearch_DefaultsToSavedLanguage(t *testing.T) {
	deps, fs := testSetup(t)
	lang := "ko"
	if _, err := deps.Prefs.Apply(context.Background(), prefs.Update{Language: &lang}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	h := NewHandlers(deps)

	if _, err := h.HandleSearch(context.Background(), makeRequest(map[string]any{"query": "tie a tie"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.lastSearch.Language != "ko" {
		t.Errorf("Language = %q, want ko", fs.lastSearch.Language)
	}
}

func TestHandleSearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		err      error
		wantCode string
	}{
		{
			name:     "invalid query",
			args:     map[string]any{"query": "x"},
			err:      errors.NewInvalidRequest("Please enter a meaningful \"How to...\" question"),
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "missing credential",
			args:     map[string]any{"query": "tie a tie"},
			err:      errors.NewMissingCredential(config.EnvOpenAIAPIKey),
			wantCode: "CONFIGURATION",
		},
		{
			name:     "llm failure",
			args:     map[string]any{"query": "tie a tie"},
			err:      errors.NewUpstream("openai", fmt.Errorf("status 503")),
			wantCode: "UPSTREAM",
		},
		{
			name:     "wrong argument type",
			args:     map[string]any{"query": 42},
			wantCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, fs := testSetup(t)
			fs.err = tt.err
			h := NewHandlers(deps)

			result, err := h.HandleSearch(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected error result")
			}
			assertErrorCode(t, result, tt.wantCode)
		})
	}
}

func TestHandleFollowUp(t *testing.T) {
	deps, fs := testSetup(t)
	h := NewHandlers(deps)

	result, err := h.HandleFollowUp(context.Background(), makeRequest(map[string]any{
		"original_query":  "tie a tie",
		"follow_up_query": "what about a bow tie?",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	if output["answer"] != "Use a double knot." {
		t.Errorf("answer = %v", output["answer"])
	}
	if fs.lastFollow.OriginalQuery != "tie a tie" || fs.lastFollow.FollowUpQuery != "what about a bow tie?" {
		t.Errorf("follow-up request = %+v", fs.lastFollow)
	}
	if fs.lastFollow.Language != "en" {
		t.Errorf("Language = %q, want en", fs.lastFollow.Language)
	}
}

func TestSavedTools_Lifecycle(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	// Save extracts details from the summary
	result, _ := h.HandleSave(ctx, makeRequest(map[string]any{
		"query":   "Tie a Tie",
		"summary": testSummary,
	}))
	output := parseOutput(t, result)
	if output["created"] != true {
		t.Fatalf("created = %v, want true", output["created"])
	}
	saved := output["tutorial"].(map[string]any)
	id := saved["id"].(string)
	if saved["difficulty"] != "Easy" || saved["timeEstimate"] != "5 minutes" {
		t.Errorf("details = %v / %v", saved["difficulty"], saved["timeEstimate"])
	}

	// Saving the same query again returns the existing entry
	result, _ = h.HandleSave(ctx, makeRequest(map[string]any{"query": "tie a tie", "title": "Other"}))
	output = parseOutput(t, result)
	if output["created"] != false {
		t.Errorf("created = %v, want false", output["created"])
	}
	if output["tutorial"].(map[string]any)["id"] != id {
		t.Error("duplicate save returned a different entry")
	}

	// List omits summaries by default
	result, _ = h.HandleList(ctx, makeRequest(nil))
	output = parseOutput(t, result)
	if output["total"] != float64(1) {
		t.Fatalf("total = %v, want 1", output["total"])
	}
	item := output["items"].([]any)[0].(map[string]any)
	if _, ok := item["summary"]; ok {
		t.Error("summary included without include_summary")
	}

	result, _ = h.HandleList(ctx, makeRequest(map[string]any{"include_summary": true}))
	output = parseOutput(t, result)
	item = output["items"].([]any)[0].(map[string]any)
	if item["summary"] != testSummary {
		t.Errorf("summary = %v", item["summary"])
	}

	// Fetch by id and by query
	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": id}))
	if parseOutput(t, result)["query"] != "Tie a Tie" {
		t.Error("fetch by id returned wrong entry")
	}
	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"query": "TIE A TIE"}))
	if parseOutput(t, result)["id"] != id {
		t.Error("fetch by query returned wrong entry")
	}

	// Delete, then delete again as a no-op
	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if parseOutput(t, result)["deleted"] != true {
		t.Error("delete reported deleted=false")
	}
	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if parseOutput(t, result)["deleted"] != false {
		t.Error("second delete reported deleted=true")
	}

	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleSave_MissingQuery(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)

	result, _ := h.HandleSave(context.Background(), makeRequest(map[string]any{"summary": "x"}))
	if !result.IsError {
		t.Fatal("expected error result")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleFetch_Addressing(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	result, _ := h.HandleFetch(ctx, makeRequest(map[string]any{"id": "x", "query": "y"}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleExportImport(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)
	ctx := context.Background()

	for _, q := range []string{"tie a tie", "fix a leaky faucet"} {
		if _, err := ops.SaveTutorial(ctx, deps.DB, ops.SaveInput{Query: q, Summary: testSummary}); err != nil {
			t.Fatalf("SaveTutorial(%q): %v", q, err)
		}
	}

	exportPath := filepath.Join(deps.ExportsDir, "backup.jsonl")
	result, _ := h.HandleExport(ctx, makeRequest(map[string]any{"path": exportPath}))
	output := parseOutput(t, result)
	if output["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", output["count"])
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	// Everything already exists, so skip mode imports nothing
	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{"path": exportPath}))
	output = parseOutput(t, result)
	if output["imported"] != float64(0) || output["skipped"] != float64(2) {
		t.Errorf("import = %v", output)
	}

	// Error mode stops at the first collision
	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{"path": exportPath, "mode": "error"}))
	output = parseOutput(t, result)
	if errs, _ := output["errors"].([]any); len(errs) != 1 || output["imported"] != float64(0) {
		t.Errorf("import = %v, want one collision and nothing imported", output)
	}

	// Only the deleted entry comes back
	existing, err := ops.FetchSaved(ctx, deps.DB, ops.FetchInput{Query: "tie a tie"})
	if err != nil {
		t.Fatalf("FetchSaved: %v", err)
	}
	ops.DeleteSaved(ctx, deps.DB, existing.ID)
	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{"path": exportPath}))
	output = parseOutput(t, result)
	if output["imported"] != float64(1) {
		t.Errorf("imported = %v, want 1", output["imported"])
	}
}

func TestHandleExport_PathOutsideExportsDir(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)

	result, _ := h.HandleExport(context.Background(), makeRequest(map[string]any{
		"path": filepath.Join(t.TempDir(), "elsewhere.jsonl"),
	}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleImport_BadMode(t *testing.T) {
	deps, _ := testSetup(t)
	h := NewHandlers(deps)

	result, _ := h.HandleImport(context.Background(), makeRequest(map[string]any{
		"path": filepath.Join(deps.ExportsDir, "x.jsonl"),
		"mode": "replace",
	}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	deps, _ := testSetup(t)

	s := NewServer(deps)
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"howto_search",
		"howto_follow_up",
		"saved_save",
		"saved_list",
		"saved_fetch",
		"saved_delete",
		"saved_export",
		"saved_import",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	deps, _ := testSetup(t)
	deps.Config.DisabledTools = []string{"saved_delete", "saved_import", "saved_delete"}

	tools := NewServer(deps).ListTools()
	if len(tools) != 6 {
		t.Errorf("registered tool count = %d, want 6", len(tools))
	}
	for _, name := range []string{"saved_delete", "saved_import"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	if _, ok := tools["howto_search"]; !ok {
		t.Error("howto_search should be registered")
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	deps, _ := testSetup(t)
	deps.Config.DisabledTools = AllToolNames()

	if tools := NewServer(deps).ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"saved_delete", "howto_follow_up"}, 0},
		{"one unknown", []string{"saved_delete", "saved_purge"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 8 {
		t.Errorf("AllToolNames() returned %d names, want 8", len(names))
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	for _, err := range []error{
		errors.NewInternal(fmt.Errorf("open /tmp/secret.db: permission denied")),
		errors.NewStorage(fmt.Errorf("sql: database is locked")),
		fmt.Errorf("plain error"),
	} {
		r := errorResult(err)
		if !r.IsError {
			t.Fatal("expected IsError=true")
		}
		errObj := parseError(t, r)
		if errObj["message"] != "an internal error occurred" {
			t.Errorf("message = %v, want generic message for %v", errObj["message"], err)
		}
		if _, ok := errObj["details"]; ok {
			t.Errorf("expected details to be omitted for %v", err)
		}
	}
}

func TestErrorResult_WrappedErrorKeepsCode(t *testing.T) {
	r := errorResult(fmt.Errorf("saving: %w", errors.NewNotFound("abc")))
	errObj := parseError(t, r)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code = %v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Error("expected non-internal errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func parseError(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if !result.IsError {
		t.Errorf("expected error %s, got success: %s", expectedCode, extractErrorMessage(result))
		return
	}
	if code := parseError(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %v, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
