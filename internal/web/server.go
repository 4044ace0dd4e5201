package web

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Searcher runs searches and follow-ups. *search.Orchestrator implements it.
type Searcher interface {
	Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error)
	FollowUp(ctx context.Context, req search.FollowUpRequest) (*search.FollowUpResponse, error)
}

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	DB          *sql.DB
	Config      *config.Config
	Credentials config.Credentials
	Searcher    Searcher
	Prefs       *prefs.Store // optional; built from DB when nil
	Version     string
}

// NewHandler builds the routed handler with middleware applied.
func NewHandler(deps Deps) http.Handler {
	// Strip the "templates/" and "static/" prefixes
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Without a shared store, preferences are read from the database once
	// and kept for this handler.
	store := deps.Prefs
	if store == nil {
		store = prefs.New(deps.DB, cfg.DefaultLanguage)
		if deps.DB != nil {
			store.Load(context.Background())
		}
	}

	h := &Handlers{
		db:       deps.DB,
		cfg:      cfg,
		creds:    deps.Credentials,
		searcher: deps.Searcher,
		prefs:    store,
		renderer: NewRenderer(templateSub, deps.Version),
	}

	mux := http.NewServeMux()

	// JSON API
	mux.HandleFunc("GET /api/ping", h.HandlePing)
	mux.HandleFunc("GET /api/demo", h.HandleDemo)
	mux.HandleFunc("GET /api/search", h.HandleSearch)
	mux.HandleFunc("POST /api/follow-up", h.HandleFollowUp)
	mux.HandleFunc("GET /api/saved", h.HandleListSaved)
	mux.HandleFunc("POST /api/saved", h.HandleCreateSaved)
	mux.HandleFunc("GET /api/saved/lookup", h.HandleLookupSaved)
	mux.HandleFunc("GET /api/saved/{id}", h.HandleGetSaved)
	mux.HandleFunc("DELETE /api/saved/{id}", h.HandleDeleteSaved)
	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.HandlePutSettings)
	mux.HandleFunc("GET /api/languages", h.HandleLanguages)

	// HTML pages
	mux.HandleFunc("GET /{$}", h.HandleHomePage)
	mux.HandleFunc("GET /results", h.HandleResultsPage)
	mux.HandleFunc("GET /ask", h.HandleAskPage)
	mux.HandleFunc("GET /saved", h.HandleSavedPage)
	mux.HandleFunc("POST /saved", h.HandleSaveForm)
	mux.HandleFunc("GET /saved/{id}", h.HandleSavedDetailPage)
	mux.HandleFunc("POST /saved/{id}/delete", h.HandleDeleteForm)
	mux.HandleFunc("GET /settings", h.HandleSettingsPage)
	mux.HandleFunc("POST /settings", h.HandleSettingsForm)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	var handler http.Handler = mux
	handler = rateLimit(handler, cfg.RateLimit)
	handler = cors(handler)
	handler = securityHeaders(handler)
	handler = logRequests(handler)
	handler = requestID(handler)
	return handler
}

// NewServer creates the HTTP server for the API and web UI.
func NewServer(deps Deps) *http.Server {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	// Searches wait on the LLM, so the write timeout leaves room past the
	// provider timeout.
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("howto server listening", slog.String("url", "http://"+srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, "[::]") || strings.HasPrefix(srv.Addr, ":") {
		slog.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
