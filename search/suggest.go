package search

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxResults caps how many matches become suggestions.
	DefaultMaxResults = 100

	maxDisplayLen = 60
	truncateAt    = 57
)

// Suggestion is one row of the result list shown under the prompt.
// Value is the match's position in the input slice, rendered as text,
// so selecting a suggestion maps straight back to its match.
type Suggestion struct {
	Value   string
	Display string
}

// MatchesToSuggestions maps matches to display suggestions in input
// order. Content is trimmed of surrounding whitespace and truncated to
// 57 runes plus an ellipsis when longer than 60.
func MatchesToSuggestions(matches []Match, maxResults int) []Suggestion {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	suggestions := make([]Suggestion, 0, len(matches))
	for i, m := range matches {
		content := strings.TrimSpace(m.Content)
		if utf8.RuneCountInString(content) > maxDisplayLen {
			content = string([]rune(content)[:truncateAt]) + "..."
		}
		suggestions = append(suggestions, Suggestion{
			Value:   strconv.Itoa(i),
			Display: content,
		})
	}

	return suggestions
}
