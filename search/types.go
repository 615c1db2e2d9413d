package search

// Match represents a single search hit parsed from tool output
type Match struct {
	File    string // path as printed by the search tool
	Line    int    // 1-based
	Column  int    // 1-based
	Content string // matched line text
}
