package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/tutorial"
)

// ListSavedOutput contains the result of the ListSaved operation.
type ListSavedOutput struct {
	Items []tutorial.SavedTutorial `json:"items"`
	Total int                      `json:"total"`
}

// ListSaved returns every saved tutorial in save order.
// A storage failure yields an empty list.
func ListSaved(ctx context.Context, database *sql.DB) *ListSavedOutput {
	items, err := db.ListAll(ctx, database)
	if err != nil {
		logStorage("list", err)
		items = nil
	}

	// Ensure we return an empty array rather than nil
	if items == nil {
		items = []tutorial.SavedTutorial{}
	}

	return &ListSavedOutput{
		Items: items,
		Total: len(items),
	}
}

// ListSummaries is ListSaved without summary text.
func ListSummaries(ctx context.Context, database *sql.DB) []tutorial.TutorialSummary {
	out := ListSaved(ctx, database)
	summaries := make([]tutorial.TutorialSummary, 0, len(out.Items))
	for i := range out.Items {
		summaries = append(summaries, out.Items[i].ToSummary())
	}
	return summaries
}
