package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrepLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Match
		ok   bool
	}{
		{
			name: "basic match",
			line: "src/main.rs:12:5:let x = 1;",
			want: Match{File: "src/main.rs", Line: 12, Column: 5, Content: "let x = 1;"},
			ok:   true,
		},
		{
			name: "content keeps its own colons",
			line: "cmd/app.go:3:1:url := \"http://example.com\"",
			want: Match{File: "cmd/app.go", Line: 3, Column: 1, Content: "url := \"http://example.com\""},
			ok:   true,
		},
		{
			name: "empty content",
			line: "a.txt:1:1:",
			want: Match{File: "a.txt", Line: 1, Column: 1, Content: ""},
			ok:   true,
		},
		{name: "no colons at all", line: "not-a-match-line", ok: false},
		{name: "too few fields", line: "file.go:10:2", ok: false},
		{name: "non-numeric line", line: "file.go:x:2:text", ok: false},
		{name: "non-numeric column", line: "file.go:10:y:text", ok: false},
		{name: "empty path", line: ":10:2:text", ok: false},
		{name: "empty line", line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGrepLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseGrepOutput(t *testing.T) {
	output := "a.go:1:1:first\n" +
		"\n" +
		"garbage line\n" +
		"b.go:2:3:second\n"

	matches := ParseGrepOutput(output)
	require.Len(t, matches, 2)
	assert.Equal(t, "a.go", matches[0].File)
	assert.Equal(t, "second", matches[1].Content)
}

func TestParseGrepOutputEmpty(t *testing.T) {
	assert.Empty(t, ParseGrepOutput(""))
	assert.Empty(t, ParseGrepOutput("\n\n"))
}
