package tutorial

import (
	"regexp"
	"strings"
)

// Canonical detail names.
const (
	DetailTools      = "Tools"
	DetailTime       = "Time"
	DetailDifficulty = "Difficulty"
)

// detailSynonyms maps canonical detail names to accepted labels (lowercase).
var detailSynonyms = map[string][]string{
	DetailTools:      {"tools needed", "tools", "tools required", "tools and materials", "materials", "materials needed", "supplies", "what you'll need", "what you need", "equipment", "ingredients"},
	DetailTime:       {"time required", "time needed", "time", "estimated time", "time estimate", "duration", "total time"},
	DetailDifficulty: {"difficulty level", "difficulty", "skill level", "level"},
}

// MatchCanonical returns the canonical detail name for a header or label,
// or "" if it matches none.
func MatchCanonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(strings.Trim(name, "*:# ")))
	for canonical, synonyms := range detailSynonyms {
		for _, s := range synonyms {
			if n == s {
				return canonical
			}
		}
	}
	return ""
}

// Details are the structured fields a summary may state.
type Details struct {
	Tools        []string
	TimeEstimate string
	Difficulty   string
}

// labelPattern matches "Label: value" lines, tolerating list markers and
// bold markup around the label ("- **Time required:** 20 minutes").
var labelPattern = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+][ \t]+|\d+[.)][ \t]+)?\*{0,2}([A-Za-z' ]+?)\*{0,2}[ \t]*:[ \t]*\*{0,2}[ \t]*(\S[^\n]*)$`)

var listItemPattern = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+[.)])[ \t]+(.+)$`)

// ExtractDetails pulls tools, time estimate and difficulty from a summary.
// Inline labels ("Difficulty: Easy") win over sections. Missing details
// stay empty.
func ExtractDetails(summary string) Details {
	var d Details

	for _, m := range labelPattern.FindAllStringSubmatch(summary, -1) {
		value := cleanValue(m[2])
		if value == "" {
			continue
		}
		switch MatchCanonical(m[1]) {
		case DetailTools:
			if d.Tools == nil {
				d.Tools = splitList(value)
			}
		case DetailTime:
			if d.TimeEstimate == "" {
				d.TimeEstimate = value
			}
		case DetailDifficulty:
			if d.Difficulty == "" {
				d.Difficulty = value
			}
		}
	}

	sections := ParseSections(summary)
	if d.Tools == nil {
		if s := FindSection(sections, DetailTools); s != nil {
			d.Tools = listItems(s.Content(summary))
		}
	}
	if d.TimeEstimate == "" {
		if s := FindSection(sections, DetailTime); s != nil {
			d.TimeEstimate = firstLine(s.Content(summary))
		}
	}
	if d.Difficulty == "" {
		if s := FindSection(sections, DetailDifficulty); s != nil {
			d.Difficulty = firstLine(s.Content(summary))
		}
	}
	return d
}

// cleanValue strips trailing bold markers and whitespace.
func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := cleanValue(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func listItems(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			if item := cleanValue(m[1]); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			line = m[1]
		}
		if l := cleanValue(line); l != "" {
			return l
		}
	}
	return ""
}
