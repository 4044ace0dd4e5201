package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/query"
	"github.com/hpungsan/howto/internal/search"
	"github.com/hpungsan/howto/internal/tutorial"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title    string
	Version  string
	Nav      string // active nav item: "home", "saved", "settings"
	Lang     string
	Dir      string // "rtl" for Arabic
	DarkMode bool
}

// HomePageData is the template data for the home page.
type HomePageData struct {
	PageData
	Trending []string
	Query    string
	Error    string
}

// ResultsPageData is the template data for the results page.
type ResultsPageData struct {
	PageData
	Query       string
	Result      *search.SearchResponse
	SummaryHTML template.HTML
	Intro       string // text before the first step, if steps were found
	Steps       query.Steps
	Saved       bool
	ShareURL    string
}

// AskPageData is the template data for a follow-up answer.
type AskPageData struct {
	PageData
	Query      string
	FollowUp   string
	AnswerHTML template.HTML
}

// SavedPageData is the template data for the saved tutorials list.
type SavedPageData struct {
	PageData
	Items []tutorial.SavedTutorial
}

// SavedDetailPageData is the template data for one saved tutorial.
type SavedDetailPageData struct {
	PageData
	Tutorial    *tutorial.SavedTutorial
	SummaryHTML template.HTML
}

// SettingsPageData is the template data for the settings page.
type SettingsPageData struct {
	PageData
	Languages []i18n.Language
	Prefs     prefs.Preferences
	Saved     bool
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
	Query      string // offered for retry when set
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"tr":           i18n.T,
		"add":          func(a, b int) int { return a + b },
		"join":         strings.Join,
		"formatMillis": formatMillis,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"home":         "home.html",
		"results":      "results.html",
		"ask":          "ask.html",
		"saved":        "saved.html",
		"saved_detail": "saved_detail.html",
		"settings":     "settings.html",
		"error":        "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		slog.Error("template not found", slog.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("template execution error", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders the error page for err.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, page PageData, q string, err error) {
	hErr := toHowtoError(req, err)
	page.Title = i18n.T(page.Lang, "results.searchError")
	r.renderPageStatus(w, hErr.Status, "error", ErrorPageData{
		PageData:   page,
		StatusCode: hErr.Status,
		Message:    publicMessage(hErr),
		Query:      q,
	})
}

// toHowtoError maps err to a HowtoError and logs server-side failures.
func toHowtoError(req *http.Request, err error) *errors.HowtoError {
	hErr, ok := errors.As(err)
	if !ok {
		hErr = errors.NewInternal(err)
	}
	if hErr.Status >= 500 {
		slog.Error("request failed",
			slog.String("path", req.URL.Path),
			slog.String("code", string(hErr.Code)),
			slog.String("request_id", RequestIDFrom(req.Context())),
			slog.Any("error", err),
		)
	}
	return hErr
}

// publicMessage hides internal details from clients.
func publicMessage(hErr *errors.HowtoError) string {
	switch hErr.Code {
	case errors.ErrInternal, errors.ErrStorage:
		return "internal error"
	}
	return hErr.Message
}

// writeAPIError writes {"error": message, "code": CODE} with the error's status.
func writeAPIError(w http.ResponseWriter, req *http.Request, err error) {
	hErr := toHowtoError(req, err)
	renderJSON(w, hErr.Status, map[string]any{
		"error": publicMessage(hErr),
		"code":  string(hErr.Code),
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the input is not passed through.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatMillis formats a Unix millisecond timestamp as "2006-01-02 15:04" UTC.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}
