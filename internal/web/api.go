package web

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"

	"github.com/hpungsan/howto/internal/config"
	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/ops"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/search"
)

// maxBodyBytes bounds JSON request bodies; saved summaries can be long.
const maxBodyBytes = 1 << 20

// Handlers contains the HTTP route handlers for the API and web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	creds    config.Credentials
	searcher Searcher
	prefs    *prefs.Store
	renderer *Renderer
}

// language returns the explicit code if given, else the saved preference.
func (h *Handlers) language(explicit string) string {
	if explicit != "" {
		return i18n.Resolve(explicit)
	}
	return h.prefs.Language()
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err == io.EOF {
			return errors.NewInvalidRequest("request body is required")
		}
		return errors.NewInvalidRequest("invalid JSON body")
	}
	return nil
}

// HandlePing handles GET /api/ping.
func (h *Handlers) HandlePing(w http.ResponseWriter, r *http.Request) {
	msg := h.creds.PingMessage
	if msg == "" {
		msg = "ping"
	}
	renderJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// HandleDemo handles GET /api/demo.
func (h *Handlers) HandleDemo(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"message": "Hello from Go server"})
}

// HandleSearch handles GET /api/search?q=&language=.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := h.searcher.Search(r.Context(), search.SearchRequest{
		Query:    r.URL.Query().Get("q"),
		Language: h.language(r.URL.Query().Get("language")),
	})
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, resp)
}

// HandleFollowUp handles POST /api/follow-up.
func (h *Handlers) HandleFollowUp(w http.ResponseWriter, r *http.Request) {
	var req search.FollowUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIError(w, r, err)
		return
	}
	req.Language = h.language(req.Language)

	resp, err := h.searcher.FollowUp(r.Context(), req)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, resp)
}

// HandleListSaved handles GET /api/saved.
func (h *Handlers) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.ListSaved(r.Context(), h.db))
}

// HandleCreateSaved handles POST /api/saved.
// 201 when a new entry was stored, 200 when the query was already saved.
func (h *Handlers) HandleCreateSaved(w http.ResponseWriter, r *http.Request) {
	var input ops.SaveInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAPIError(w, r, err)
		return
	}

	out, err := ops.SaveTutorial(r.Context(), h.db, input)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	renderJSON(w, status, out)
}

// HandleLookupSaved handles GET /api/saved/lookup?q=.
func (h *Handlers) HandleLookupSaved(w http.ResponseWriter, r *http.Request) {
	t, err := ops.FetchSaved(r.Context(), h.db, ops.FetchInput{Query: r.URL.Query().Get("q")})
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, t)
}

// HandleGetSaved handles GET /api/saved/{id}.
func (h *Handlers) HandleGetSaved(w http.ResponseWriter, r *http.Request) {
	t, err := ops.FetchSaved(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, t)
}

// HandleDeleteSaved handles DELETE /api/saved/{id}.
func (h *Handlers) HandleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.DeleteSaved(r.Context(), h.db, r.PathValue("id")))
}

// HandleGetSettings handles GET /api/settings.
func (h *Handlers) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.prefs.Get())
}

// HandlePutSettings handles PUT /api/settings.
func (h *Handlers) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	var u prefs.Update
	if err := decodeJSON(w, r, &u); err != nil {
		writeAPIError(w, r, err)
		return
	}
	p, err := h.prefs.Apply(r.Context(), u)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

// HandleLanguages handles GET /api/languages.
func (h *Handlers) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"languages": i18n.Languages(),
		"default":   i18n.Resolve(h.cfg.DefaultLanguage),
	})
}
