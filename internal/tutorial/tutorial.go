// Package tutorial defines the saved tutorial record and extracts
// structured details from LLM summaries.
package tutorial

// SavedTutorial is a search result the user chose to keep.
// JSON field names are part of the HTTP API.
type SavedTutorial struct {
	// ID is a ULID assigned at save time
	ID string `json:"id"`

	// Title defaults to "How to <query>"
	Title string `json:"title"`

	// Query is the question as the user typed it
	Query string `json:"query"`

	// QueryNorm is the normalized query; at most one tutorial per value
	QueryNorm string `json:"-"`

	// Summary is the LLM guide text (markdown)
	Summary string `json:"summary"`

	// DateSaved is an ISO 8601 date (YYYY-MM-DD) unless the caller supplied one
	DateSaved string `json:"dateSaved"`

	// Timestamp is the save time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`

	// Tools, TimeEstimate and Difficulty are optional details
	Tools        []string `json:"tools,omitempty"`
	TimeEstimate string   `json:"timeEstimate,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// TutorialSummary is a SavedTutorial without its summary text.
// Used by list views to keep payloads small.
type TutorialSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Query        string   `json:"query"`
	DateSaved    string   `json:"dateSaved"`
	Timestamp    int64    `json:"timestamp"`
	Tools        []string `json:"tools,omitempty"`
	TimeEstimate string   `json:"timeEstimate,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// ToSummary strips the summary text.
func (t *SavedTutorial) ToSummary() TutorialSummary {
	return TutorialSummary{
		ID:           t.ID,
		Title:        t.Title,
		Query:        t.Query,
		DateSaved:    t.DateSaved,
		Timestamp:    t.Timestamp,
		Tools:        t.Tools,
		TimeEstimate: t.TimeEstimate,
		Difficulty:   t.Difficulty,
	}
}

// DefaultTitle returns the title used when none is given.
func DefaultTitle(query string) string {
	return "How to " + query
}
