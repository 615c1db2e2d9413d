package search

import (
	"strconv"
	"strings"
)

// ParseGrepLine parses a single line of vimgrep-style output.
// Format: file:line:column:text
// The line is accepted in full or rejected in full; anything that does
// not match the shape reports ok=false.
func ParseGrepLine(line string) (Match, bool) {
	// The text part may itself contain colons, so split into at most
	// four fields and keep the remainder intact.
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return Match{}, false
	}

	file := parts[0]
	if file == "" {
		return Match{}, false
	}

	lineNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return Match{}, false
	}

	columnNum, err := strconv.Atoi(parts[2])
	if err != nil {
		return Match{}, false
	}

	return Match{
		File:    file,
		Line:    lineNum,
		Column:  columnNum,
		Content: parts[3],
	}, true
}

// ParseGrepOutput parses multiple lines of vimgrep-style output,
// skipping blank and malformed lines.
func ParseGrepOutput(output string) []Match {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	matches := make([]Match, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		match, ok := ParseGrepLine(line)
		if !ok {
			continue
		}
		matches = append(matches, match)
	}

	return matches
}
