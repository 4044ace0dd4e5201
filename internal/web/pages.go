package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/ops"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/query"
	"github.com/hpungsan/howto/internal/search"
)

// trendingSearches are suggested on the home page.
var trendingSearches = []string{
	"tie a tie",
	"change a flat tire",
	"bake sourdough bread",
	"fix a leaky faucet",
	"start a vegetable garden",
	"learn to juggle",
}

// page builds the common page fields. A ?lang= parameter overrides the
// saved language for this request only.
func (h *Handlers) page(r *http.Request, nav, titleKey string) PageData {
	lang := h.language(r.URL.Query().Get("lang"))
	p := PageData{
		Title:    i18n.T(lang, titleKey),
		Version:  h.renderer.version,
		Nav:      nav,
		Lang:     lang,
		Dir:      "ltr",
		DarkMode: h.prefs.Get().DarkMode,
	}
	if lang == "ar" {
		p.Dir = "rtl"
	}
	return p
}

// HandleHomePage handles GET /.
func (h *Handlers) HandleHomePage(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "home", HomePageData{
		PageData: h.page(r, "home", "app.name"),
		Trending: trendingSearches,
	})
}

// HandleResultsPage handles GET /results?q=.
// Invalid queries re-render the home page with a message and no search.
func (h *Handlers) HandleResultsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page := h.page(r, "home", "results.resultsFor")

	if !query.IsValid(q) {
		page.Title = i18n.T(page.Lang, "app.name")
		h.renderer.renderPageStatus(w, http.StatusBadRequest, "home", HomePageData{
			PageData: page,
			Trending: trendingSearches,
			Query:    q,
			Error:    i18n.T(page.Lang, "home.invalidQuery"),
		})
		return
	}

	resp, err := h.searcher.Search(r.Context(), search.SearchRequest{Query: q, Language: page.Lang})
	if err != nil {
		h.renderer.renderError(w, r, page, q, err)
		return
	}

	page.Title = i18n.T(page.Lang, "results.resultsFor") + " " + q
	h.renderer.renderPage(w, "results", ResultsPageData{
		PageData:    page,
		Query:       q,
		Result:      resp,
		SummaryHTML: renderMarkdown(resp.Summary),
		Intro:       query.Intro(resp.Summary),
		Steps:       query.ParseSteps(resp.Summary),
		Saved:       ops.IsSaved(r.Context(), h.db, q),
		ShareURL:    shareURL(q, resp.Summary),
	})
}

// shareURL builds a mailto link carrying the share text.
func shareURL(q, summary string) string {
	v := url.Values{}
	v.Set("subject", "How to "+q)
	v.Set("body", search.ShareText(q, summary))
	return "mailto:?" + strings.ReplaceAll(v.Encode(), "+", "%20")
}

// HandleAskPage handles GET /ask?q=&f= (follow-up form on the results page).
func (h *Handlers) HandleAskPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f := r.URL.Query().Get("f")
	page := h.page(r, "home", "results.followUpQuestion")

	resp, err := h.searcher.FollowUp(r.Context(), search.FollowUpRequest{
		OriginalQuery: q,
		FollowUpQuery: f,
		Language:      page.Lang,
	})
	if err != nil {
		h.renderer.renderError(w, r, page, q, err)
		return
	}

	h.renderer.renderPage(w, "ask", AskPageData{
		PageData:   page,
		Query:      q,
		FollowUp:   f,
		AnswerHTML: renderMarkdown(resp.Answer),
	})
}

// HandleSavedPage handles GET /saved.
func (h *Handlers) HandleSavedPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "saved", SavedPageData{
		PageData: h.page(r, "saved", "saved.myTutorials"),
		Items:    ops.ListSaved(r.Context(), h.db).Items,
	})
}

// HandleSaveForm handles POST /saved from the results page.
func (h *Handlers) HandleSaveForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, h.page(r, "saved", "saved.myTutorials"), "", errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := ops.SaveTutorial(r.Context(), h.db, ops.SaveInput{
		Query:   r.FormValue("q"),
		Summary: r.FormValue("summary"),
	})
	if err != nil {
		h.renderer.renderError(w, r, h.page(r, "saved", "saved.myTutorials"), "", err)
		return
	}

	if out.Tutorial == nil {
		http.Redirect(w, r, "/saved", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/saved/"+url.PathEscape(out.Tutorial.ID), http.StatusSeeOther)
}

// HandleSavedDetailPage handles GET /saved/{id}.
func (h *Handlers) HandleSavedDetailPage(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, "saved", "saved.myTutorials")

	t, err := ops.FetchSaved(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, page, "", err)
		return
	}

	page.Title = t.Title
	h.renderer.renderPage(w, "saved_detail", SavedDetailPageData{
		PageData:    page,
		Tutorial:    t,
		SummaryHTML: renderMarkdown(t.Summary),
	})
}

// HandleDeleteForm handles POST /saved/{id}/delete.
func (h *Handlers) HandleDeleteForm(w http.ResponseWriter, r *http.Request) {
	ops.DeleteSaved(r.Context(), h.db, r.PathValue("id"))
	http.Redirect(w, r, "/saved", http.StatusSeeOther)
}

// HandleSettingsPage handles GET /settings.
func (h *Handlers) HandleSettingsPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "settings", SettingsPageData{
		PageData:  h.page(r, "settings", "settings.settings"),
		Languages: i18n.Languages(),
		Prefs:     h.prefs.Get(),
		Saved:     r.URL.Query().Get("saved") == "1",
	})
}

// HandleSettingsForm handles POST /settings.
func (h *Handlers) HandleSettingsForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, h.page(r, "settings", "settings.settings"), "", errors.NewInvalidRequest("invalid form data"))
		return
	}

	lang := r.FormValue("language")
	dark := r.FormValue("darkMode") == "on"
	u := prefs.Update{DarkMode: &dark}
	if lang != "" {
		u.Language = &lang
	}
	if _, err := h.prefs.Apply(r.Context(), u); err != nil {
		h.renderer.renderError(w, r, h.page(r, "settings", "settings.settings"), "", err)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}
