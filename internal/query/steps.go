package query

import (
	"regexp"
	"strings"
)

var stepMarker = regexp.MustCompile(`(?i)step\s+\d+:`)

// Steps is the result of splitting a summary on "Step N:" markers.
// When Found is false, Items holds the whole summary as a single entry.
type Steps struct {
	Found bool
	Items []string
}

// ParseSteps splits summary into steps. The split is lexical: it only
// recognizes literal "Step N:" markers and makes no attempt to infer
// structure from lists or headings.
func ParseSteps(summary string) Steps {
	if !stepMarker.MatchString(summary) {
		return Steps{Items: []string{summary}}
	}

	parts := stepMarker.Split(summary, -1)
	items := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		// Text before the first marker is an introduction, not a step.
		if i == 0 || p == "" {
			continue
		}
		items = append(items, p)
	}
	if len(items) == 0 {
		return Steps{Items: []string{summary}}
	}
	return Steps{Found: true, Items: items}
}

// Intro returns the text before the first "Step N:" marker, trimmed.
func Intro(summary string) string {
	loc := stepMarker.FindStringIndex(summary)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(summary[:loc[0]])
}
