package tutorial

import (
	"regexp"
	"strings"
)

// Section is a markdown section of a summary.
type Section struct {
	HeaderName   string // "Tools Needed"
	Canonical    string // canonical detail name if matched, empty otherwise
	ContentStart int    // byte offset where content starts
	ContentEnd   int    // byte offset before the next header or EOF
}

// headerPattern matches markdown headers (h1-h6) and bold-only lines used
// as headers ("**Tools needed**"), both optionally ending with a colon.
var headerPattern = regexp.MustCompile(`(?m)^(?:#{1,6}[ \t]+(?:\*\*)?([^\n]+?)(?:\*\*)?|\*\*([^\n*]+?)\*\*)[ \t]*:?[ \t]*$`)

// fencePattern matches fenced code block delimiters at the start of a line,
// allowing 0-3 spaces of indentation.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

// fencedRanges returns [start, end) byte ranges of fenced code blocks.
// A closing fence must use the same character and be at least as long.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return nil
	}

	var ranges [][2]int
	var openChar byte
	var openLen, openStart int
	inFence := false

	for _, match := range matches {
		fenceChars := text[match[2]:match[3]]
		char := fenceChars[0]
		if !inFence {
			openChar, openLen, openStart = char, len(fenceChars), match[0]
			inFence = true
		} else if char == openChar && len(fenceChars) >= openLen {
			ranges = append(ranges, [2]int{openStart, match[1]})
			inFence = false
		}
	}
	return ranges
}

func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

// ParseSections finds section headers and their content boundaries.
// Headers inside fenced code blocks are ignored. Returns nil if none found.
func ParseSections(text string) []Section {
	fences := fencedRanges(text)

	var matches [][]int
	for _, m := range headerPattern.FindAllStringSubmatchIndex(text, -1) {
		if !insideFence(m[0], fences) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, len(matches))
	for i, m := range matches {
		var name string
		if m[2] >= 0 {
			name = text[m[2]:m[3]]
		} else {
			name = text[m[4]:m[5]]
		}
		name = strings.TrimSpace(strings.Trim(name, "*: "))

		contentStart := m[1]
		if contentStart < len(text) && text[contentStart] == '\n' {
			contentStart++
		}
		contentEnd := len(text)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		}

		sections[i] = Section{
			HeaderName:   name,
			Canonical:    MatchCanonical(name),
			ContentStart: contentStart,
			ContentEnd:   contentEnd,
		}
	}
	return sections
}

// Content returns the section's text, trimmed.
func (s Section) Content(text string) string {
	if s.ContentStart >= s.ContentEnd {
		return ""
	}
	return strings.TrimSpace(text[s.ContentStart:s.ContentEnd])
}

// FindSection returns the first section whose canonical name is canonical.
func FindSection(sections []Section, canonical string) *Section {
	for i := range sections {
		if sections[i].Canonical == canonical {
			return &sections[i]
		}
	}
	return nil
}
