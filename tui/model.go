package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"livegrep/config"
	"livegrep/editor"
	"livegrep/host"
	"livegrep/preview"
	"livegrep/search"
)

// visibleResults is the height of the result list in rows.
const visibleResults = 8

// InputMode represents which input field is active
type InputMode int

const (
	InputModeQuery InputMode = iota
	InputModeMask
)

// Model represents the application state
type Model struct {
	// Input fields
	queryInput textinput.Model
	maskInput  textinput.Model
	inputMode  InputMode

	// Search state
	coord       *search.Coordinator
	newExecutor func(query, mask, dir string) search.Executor
	maxResults  int
	matches     []search.Match
	suggestions []search.Suggestion
	selected    int
	offset      int
	searching   bool

	// Preview pane
	panes   *paneHost
	preview *preview.Preview

	// Editor
	editor editor.Editor

	// Search scope
	scope      string // "project" or "directory"
	gitRoot    string
	currentDir string

	// UI dimensions
	width  int
	height int
}

// New creates a Model wired from cfg. dir, when non-empty, pins the
// search directory and disables scope switching.
func New(cfg *config.Config, dir string) *Model {
	queryInput := textinput.New()
	queryInput.Placeholder = "search"
	queryInput.Prompt = ""
	queryInput.Focus()

	maskInput := textinput.New()
	maskInput.Placeholder = "*.go"
	maskInput.Prompt = ""

	coord := search.NewCoordinator()
	coord.Debounce = cfg.Debounce()
	coord.MinQueryLength = cfg.MinQueryLength

	gitRoot, isGitRepo := search.GetCurrentGitRoot()
	currentDir, _ := os.Getwd()
	scope := "directory"
	if isGitRepo {
		scope = "project"
	}
	if dir != "" {
		currentDir = dir
		gitRoot = ""
		scope = "directory"
	}

	panes := newPaneHost()
	pv := preview.New(panes, host.OSFileReader{})
	pv.Ratio = cfg.PreviewRatio
	pv.SetOriginalSplit(rootSplit)

	ed := editor.Editor(cfg.Editor)
	if ed == "" {
		ed, _ = editor.DetectEditor()
	}

	return &Model{
		queryInput:  queryInput,
		maskInput:   maskInput,
		coord:       coord,
		newExecutor: search.RgExecutor,
		maxResults:  cfg.MaxResults,
		selected:    -1,
		panes:       panes,
		preview:     pv,
		editor:      ed,
		scope:       scope,
		gitRoot:     gitRoot,
		currentDir:  currentDir,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchResultsMsg:
		return m.handleSearchResults(msg)

	case searchDoneMsg:
		// Nothing was delivered: the call was superseded, too short,
		// or the process failed. Only clear the spinner if the prompt
		// still shows the query this call carried.
		if msg.query == m.queryInput.Value() && msg.mask == m.maskInput.Value() {
			m.searching = false
		}
		return m, nil

	default:
		return m, nil
	}
}

// View renders the UI
func (m *Model) View() string {
	return renderView(m)
}

// searchResultsMsg delivers an accepted search outcome.
type searchResultsMsg struct {
	query   string
	mask    string
	matches []search.Match
}

// searchDoneMsg reports a search call that produced no results update.
type searchDoneMsg struct {
	query string
	mask  string
}

// handleKey processes keyboard input
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	// Keys routed through the focused pane's mode bindings first, so a
	// focused preview can be dismissed with its close key.
	if cmd := m.panes.binding(keyStr); cmd == "close_buffer" {
		m.preview.Close()
		return m, nil
	}

	// macOS sends Option+P as π and Option+D as ∂ without the Alt
	// flag, so the scope shortcuts need the raw runes checked too.
	if len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'π':
			return m, m.switchScope("project")
		case '∂':
			return m, m.switchScope("directory")
		}
	}
	if msg.Alt && len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'p', 'P':
			return m, m.switchScope("project")
		case 'd', 'D':
			return m, m.switchScope("directory")
		}
	}

	switch keyStr {
	case "ctrl+c", "esc":
		m.coord.Reset()
		m.preview.Close()
		return m, tea.Quit

	case "tab":
		if m.inputMode == InputModeQuery {
			m.inputMode = InputModeMask
			m.queryInput.Blur()
			m.maskInput.Focus()
		} else {
			m.inputMode = InputModeQuery
			m.maskInput.Blur()
			m.queryInput.Focus()
		}
		return m, nil

	case "alt+p", "alt+P":
		return m, m.switchScope("project")

	case "alt+d", "alt+D":
		return m, m.switchScope("directory")

	case "ctrl+w":
		return m, m.toggleFocus()

	case "up":
		if m.selected > 0 {
			m.selected--
			m.adjustScroll()
			m.updatePreview()
		}
		return m, nil

	case "down":
		if m.selected < len(m.suggestions)-1 {
			m.selected++
			m.adjustScroll()
			m.updatePreview()
		}
		return m, nil

	case "enter":
		if m.selected >= 0 && m.selected < len(m.matches) && m.editor != "" {
			match := m.matches[m.selected]
			// Failure to reach the editor should not take the TUI down.
			_ = editor.OpenFile(m.editor, m.searchPath(match.File), match.Line, match.Column)
			m.coord.Reset()
			m.preview.Close()
			return m, tea.Quit
		}
		return m, nil

	default:
		return m.handleTextInput(msg)
	}
}

// handleTextInput forwards the key to the active input and re-triggers
// the search when the text actually changed.
func (m *Model) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.inputMode == InputModeQuery {
		before := m.queryInput.Value()
		m.queryInput, cmd = m.queryInput.Update(msg)
		if m.queryInput.Value() == before {
			return m, cmd
		}
	} else {
		before := m.maskInput.Value()
		m.maskInput, cmd = m.maskInput.Update(msg)
		if m.maskInput.Value() == before {
			return m, cmd
		}
		// Same query, new mask: clear the duplicate-suppression
		// bookkeeping or the coordinator would skip the re-run.
		m.coord.Reset()
	}
	return m, tea.Batch(cmd, m.triggerSearch())
}

// switchScope flips between project and directory scope and re-runs
// the current query against the new root.
func (m *Model) switchScope(scope string) tea.Cmd {
	if scope == "project" && m.gitRoot == "" {
		return nil
	}
	if m.scope == scope {
		return nil
	}
	m.scope = scope
	// Same query, different root: clear the duplicate-suppression
	// bookkeeping so the coordinator runs it again.
	m.coord.Reset()
	return m.triggerSearch()
}

// toggleFocus moves input focus between the prompt and the preview.
func (m *Model) toggleFocus() tea.Cmd {
	p := m.panes.findPanel("search-preview")
	if p == nil {
		return nil
	}
	if m.panes.focused == rootSplit {
		_ = m.panes.FocusSplit(p.split)
	} else {
		_ = m.panes.FocusSplit(rootSplit)
	}
	return nil
}

// triggerSearch hands the current prompt state to the coordinator. The
// coordinator owns debounce, supersession and staleness; the returned
// command simply reports what, if anything, was delivered.
func (m *Model) triggerSearch() tea.Cmd {
	query := m.queryInput.Value()
	mask := m.maskInput.Value()

	m.selected = -1
	m.offset = 0

	if strings.TrimSpace(query) == "" {
		m.matches = nil
		m.suggestions = nil
		m.searching = false
	} else {
		m.searching = true
	}

	coord := m.coord
	executor := m.newExecutor(query, mask, m.searchDir())
	return func() tea.Msg {
		var msg tea.Msg = searchDoneMsg{query: query, mask: mask}
		coord.Search(query, executor, func(result search.Result) {
			msg = searchResultsMsg{
				query:   query,
				mask:    mask,
				matches: search.ParseGrepOutput(result.Stdout),
			}
		})
		return msg
	}
}

// handleSearchResults installs a delivered result set, unless the
// prompt has moved on since the search was issued.
func (m *Model) handleSearchResults(msg searchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.queryInput.Value() || msg.mask != m.maskInput.Value() {
		return m, nil
	}

	m.searching = false
	m.matches = msg.matches
	m.suggestions = search.MatchesToSuggestions(m.matches, m.maxResults)
	m.offset = 0
	if len(m.matches) > 0 {
		m.selected = 0
		m.updatePreview()
	} else {
		m.selected = -1
	}
	return m, nil
}

// updatePreview renders the selected match into the preview pane.
func (m *Model) updatePreview() {
	if m.selected < 0 || m.selected >= len(m.matches) {
		return
	}
	if !m.preview.IsOpen() {
		// A fresh pane must hand focus straight back to the prompt.
		m.preview.SetOriginalSplit(rootSplit)
	}
	m.preview.Update(m.matches[m.selected])
}

// adjustScroll keeps the selected row inside the visible window.
func (m *Model) adjustScroll() {
	if len(m.suggestions) <= visibleResults {
		m.offset = 0
		return
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visibleResults {
		m.offset = m.selected - visibleResults + 1
	}
	if maxOffset := len(m.suggestions) - visibleResults; m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// searchDir returns the directory the next search should run in.
func (m *Model) searchDir() string {
	if m.scope == "project" && m.gitRoot != "" {
		return m.gitRoot
	}
	return m.currentDir
}

// searchPath resolves a match path, which rg prints relative to the
// search directory, for handing to the editor.
func (m *Model) searchPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(m.searchDir(), file)
}
