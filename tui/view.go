package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	searchIconStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	maskLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	scopeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("62")).
			Bold(true).
			Padding(0, 1)

	scopeInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 1)

	// Result styles
	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedResultStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("25"))

	fileInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// Preview styles
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	previewFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)
)

// renderView renders the entire UI
func renderView(m *Model) string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, renderHeader(m))
	sections = append(sections, renderResults(m))
	if pane := m.panes.findPanel("search-preview"); pane != nil && pane.splitOpen {
		sections = append(sections, renderPreviewPane(m, pane))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the prompt line: icon, query, mask, scope tabs
// and the status line below them.
func renderHeader(m *Model) string {
	icon := searchIconStyle.Render("🔍")

	maskLabel := maskLabelStyle.Render("File mask:")
	maskDisplay := lipgloss.JoinHorizontal(lipgloss.Left, maskLabel, " ", m.maskInput.View())

	var projectTab, directoryTab string
	if m.scope == "project" {
		projectTab = scopeStyle.Render("In Project")
		directoryTab = scopeInactiveStyle.Render("In Directory")
	} else {
		projectTab = scopeInactiveStyle.Render("In Project")
		directoryTab = scopeStyle.Render("In Directory")
	}
	scopeTabs := directoryTab
	if m.gitRoot != "" {
		scopeTabs = lipgloss.JoinHorizontal(lipgloss.Left, projectTab, " ", directoryTab)
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Left,
		icon, " ",
		m.queryInput.View(),
		"  ",
		maskDisplay,
		"  ",
		scopeTabs,
	)
	statusLine := statusStyle.Render(renderStatus(m))

	header := lipgloss.JoinVertical(lipgloss.Left, headerLine, statusLine)
	return headerStyle.Width(m.width - 2).Render(header)
}

// renderStatus renders the status information
func renderStatus(m *Model) string {
	if m.searching {
		return "Searching..."
	}
	if len(m.matches) == 0 {
		if strings.TrimSpace(m.queryInput.Value()) == "" {
			return "Enter a search query..."
		}
		return "No matches found"
	}

	files := make(map[string]bool)
	for _, match := range m.matches {
		files[match.File] = true
	}
	if len(files) == 1 {
		return fmt.Sprintf("%d matches in 1 file", len(m.matches))
	}
	return fmt.Sprintf("%d matches in %d files", len(m.matches), len(files))
}

// renderResults renders the suggestion list with the selection bar.
func renderResults(m *Model) string {
	if len(m.suggestions) == 0 {
		return ""
	}

	start := m.offset
	end := start + visibleResults
	if end > len(m.suggestions) {
		end = len(m.suggestions)
	}

	width := m.width - 2
	var lines []string
	for i := start; i < end; i++ {
		line := formatResult(m, i, width)
		if i == m.selected {
			line = selectedResultStyle.Render(line)
		} else {
			line = resultStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// formatResult lays out one row: content snippet left, file:line right.
func formatResult(m *Model, i, width int) string {
	match := m.matches[i]
	snippet := m.suggestions[i].Display

	fileInfo := fmt.Sprintf("%s:%d", filepath.Base(match.File), match.Line)
	infoWidth := 30
	if infoWidth > width/3 {
		infoWidth = width / 3
	}
	codeWidth := width - infoWidth
	if codeWidth < 10 {
		codeWidth = 10
	}

	code := lipgloss.NewStyle().Width(codeWidth).MaxHeight(1).Render(snippet)
	info := fileInfoStyle.Width(infoWidth).Align(lipgloss.Right).Render(fileInfo)
	return lipgloss.JoinHorizontal(lipgloss.Top, code, info)
}

// renderPreviewPane renders the preview split at its requested ratio
// of the remaining screen height.
func renderPreviewPane(m *Model, p *pane) string {
	ratio := p.ratio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	height := int(float64(m.height) * ratio)
	if height < 5 {
		height = 5
	}

	lines := strings.Split(strings.TrimSuffix(p.content, "\n"), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}

	style := previewStyle
	if m.panes.focused == p.split {
		style = previewFocusedStyle
	}
	return style.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}
