// Package query validates and normalizes "how to" questions.
package query

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/howto/internal/errors"
)

// MinLength is the minimum trimmed query length in runes.
const MinLength = 3

// Validation messages returned to callers.
const (
	MsgMissing         = "Missing search query"
	MsgTooShort        = "Search query must be at least 3 characters"
	MsgTooFewWords     = "Please enter a meaningful question with at least 2 words"
	MsgAtom            = "Please enter a valid 'How to...' question"
	MsgMissingFollowUp = "Missing follow-up query"
)

var atomPattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,2}$`)

// Validate returns nil if q is a meaningful question, or an INVALID_REQUEST
// error describing the first rule it breaks.
func Validate(q string) error {
	if q == "" {
		return errors.NewInvalidRequest(MsgMissing)
	}
	trimmed := strings.TrimSpace(q)
	if utf8.RuneCountInString(trimmed) < MinLength {
		return errors.NewInvalidRequest(MsgTooShort)
	}
	if countWords(trimmed) < 2 {
		return errors.NewInvalidRequest(MsgTooFewWords)
	}
	if atomPattern.MatchString(trimmed) {
		return errors.NewInvalidRequest(MsgAtom)
	}
	return nil
}

// IsValid reports whether q passes Validate.
func IsValid(q string) bool {
	return Validate(q) == nil
}

// ValidateFollowUp rejects a blank follow-up question.
func ValidateFollowUp(q string) error {
	if strings.TrimSpace(q) == "" {
		return errors.NewInvalidRequest(MsgMissingFollowUp)
	}
	return nil
}

// countWords counts whitespace-separated tokens longer than one rune.
func countWords(s string) int {
	n := 0
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) > 1 {
			n++
		}
	}
	return n
}

// Normalize trims, lowercases and collapses internal whitespace.
// Two queries with the same normalized form name the same saved tutorial.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
