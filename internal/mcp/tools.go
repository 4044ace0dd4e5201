package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Argument names are snake_case; results are JSON.

var searchToolDef = mcp.NewTool("howto_search",
	mcp.WithDescription("Search videos and web articles for a \"how to\" question and return them with an AI-written step-by-step guide. Empty provider results are replaced with curated suggestions."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("What to learn, without the leading \"how to\" (e.g. \"tie a tie\"). At least 3 characters and 2 words."),
	),
	mcp.WithString("language",
		mcp.Description("Answer language code (en, es, fr, de, it, ja, zh, ar, pt, ru, ko). Defaults to the saved preference."),
	),
)

var followUpToolDef = mcp.NewTool("howto_follow_up",
	mcp.WithDescription("Answer a follow-up question about an earlier how-to query."),
	mcp.WithString("original_query",
		mcp.Required(),
		mcp.Description("The query the follow-up refers to"),
	),
	mcp.WithString("follow_up_query",
		mcp.Required(),
		mcp.Description("The follow-up question"),
	),
	mcp.WithString("language",
		mcp.Description("Answer language code. Defaults to the saved preference."),
	),
)

var saveToolDef = mcp.NewTool("saved_save",
	mcp.WithDescription("Save a tutorial. Saving a query that is already saved (case-insensitive) returns the existing entry with created=false."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The how-to query"),
	),
	mcp.WithString("summary",
		mcp.Description("Guide text, usually the summary returned by howto_search"),
	),
	mcp.WithString("title",
		mcp.Description("Display title. Default: \"How to <query>\""),
	),
	mcp.WithArray("tools",
		mcp.Description("Tools needed. Extracted from the summary when tools, time_estimate and difficulty are all omitted."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("time_estimate",
		mcp.Description("How long it takes, e.g. \"30 minutes\""),
	),
	mcp.WithString("difficulty",
		mcp.Description("Easy, Medium or Hard"),
	),
)

var listToolDef = mcp.NewTool("saved_list",
	mcp.WithDescription("List saved tutorials in the order they were saved."),
	mcp.WithBoolean("include_summary",
		mcp.Description("Include the full guide text of each entry (default: false)"),
	),
)

var fetchToolDef = mcp.NewTool("saved_fetch",
	mcp.WithDescription("Fetch one saved tutorial by id or by query. Give exactly one of id or query."),
	mcp.WithString("id",
		mcp.Description("Saved tutorial id"),
	),
	mcp.WithString("query",
		mcp.Description("Saved query (case-insensitive)"),
	),
)

var deleteToolDef = mcp.NewTool("saved_delete",
	mcp.WithDescription("Delete a saved tutorial by id. Unknown ids are a no-op with deleted=false."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Saved tutorial id"),
	),
)

var exportToolDef = mcp.NewTool("saved_export",
	mcp.WithDescription("Export all saved tutorials to a JSONL file in the exports directory."),
	mcp.WithString("path",
		mcp.Description("Output file (.jsonl) inside the exports directory. Default: saved-<timestamp>.jsonl"),
	),
)

var importToolDef = mcp.NewTool("saved_import",
	mcp.WithDescription("Import saved tutorials from a JSONL export in the exports directory."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Export file (.jsonl) inside the exports directory"),
	),
	mcp.WithString("mode",
		mcp.Description("skip (default): skip queries already saved. error: import nothing if any query collides."),
		mcp.Enum("skip", "error"),
	),
)
