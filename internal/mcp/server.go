package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/search"
)

// Searcher runs searches and follow-ups. *search.Orchestrator implements it.
type Searcher interface {
	Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error)
	FollowUp(ctx context.Context, req search.FollowUpRequest) (*search.FollowUpResponse, error)
}

// Deps are the collaborators the tool handlers need.
type Deps struct {
	DB         *sql.DB
	Config     *config.Config
	Searcher   Searcher
	Prefs      *prefs.Store
	ExportsDir string
	Version    string
}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"howto_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"howto_follow_up": {
		def:     followUpToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFollowUp },
	},
	"saved_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"saved_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"saved_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"saved_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"saved_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"saved_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the howto tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(deps Deps) *server.MCPServer {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}

	s := server.NewMCPServer(
		"howto",
		deps.Version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	disabled := make(map[string]bool, len(deps.Config.DisabledTools))
	for _, name := range deps.Config.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps Deps) error {
	return server.ServeStdio(NewServer(deps))
}
