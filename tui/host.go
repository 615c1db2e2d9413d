package tui

import (
	"fmt"

	"livegrep/host"
)

// rootSplit is the split holding the prompt and result list. It exists
// from startup; panes created through the host API get fresh ids.
const rootSplit = host.SplitID(1)

// pane is one virtual buffer living in its own split.
type pane struct {
	buffer  host.BufferID
	split   host.SplitID
	panel   string
	mode    string
	ratio   float64
	content string

	bufferOpen bool
	splitOpen  bool
}

// paneHost implements host.Host inside the TUI. Virtual buffers become
// panes that the view renders below the result list; modes and focus
// feed back into key routing.
type paneHost struct {
	nextID  int
	panes   []*pane
	modes   map[string]map[string]string
	focused host.SplitID
}

func newPaneHost() *paneHost {
	return &paneHost{
		nextID:  int(rootSplit),
		modes:   make(map[string]map[string]string),
		focused: rootSplit,
	}
}

func (h *paneHost) DefineMode(name string, bindings map[string]string) error {
	h.modes[name] = bindings
	return nil
}

func (h *paneHost) CreateVirtualBuffer(opts host.BufferOptions) (host.BufferID, host.SplitID, error) {
	if opts.PanelID != "" {
		if p := h.findPanel(opts.PanelID); p != nil {
			p.content = opts.Content
			return p.buffer, p.split, nil
		}
	}

	h.nextID++
	p := &pane{
		buffer:     host.BufferID(h.nextID),
		split:      host.SplitID(h.nextID),
		panel:      opts.PanelID,
		mode:       opts.Mode,
		ratio:      opts.Ratio,
		content:    opts.Content,
		bufferOpen: true,
		splitOpen:  true,
	}
	h.panes = append(h.panes, p)
	h.focused = p.split
	return p.buffer, p.split, nil
}

func (h *paneHost) SetBufferContent(id host.BufferID, content string) error {
	p := h.findBuffer(id)
	if p == nil {
		return fmt.Errorf("unknown buffer %d", id)
	}
	p.content = content
	return nil
}

func (h *paneHost) CloseBuffer(id host.BufferID) error {
	p := h.findBuffer(id)
	if p == nil {
		return fmt.Errorf("unknown buffer %d", id)
	}
	p.bufferOpen = false
	p.content = ""
	return nil
}

func (h *paneHost) CloseSplit(id host.SplitID) error {
	for _, p := range h.panes {
		if p.split == id && p.splitOpen {
			p.splitOpen = false
			if h.focused == id {
				h.focused = rootSplit
			}
			return nil
		}
	}
	return fmt.Errorf("unknown split %d", id)
}

func (h *paneHost) FocusSplit(id host.SplitID) error {
	if id != rootSplit {
		found := false
		for _, p := range h.panes {
			if p.split == id && p.splitOpen {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown split %d", id)
		}
	}
	h.focused = id
	return nil
}

// findPanel returns the open pane tagged with panel, if any.
func (h *paneHost) findPanel(panel string) *pane {
	for _, p := range h.panes {
		if p.panel == panel && p.bufferOpen {
			return p
		}
	}
	return nil
}

func (h *paneHost) findBuffer(id host.BufferID) *pane {
	for _, p := range h.panes {
		if p.buffer == id && p.bufferOpen {
			return p
		}
	}
	return nil
}

// binding resolves the command bound to key in the mode of the focused
// pane, or "" when the root split is focused or nothing is bound.
func (h *paneHost) binding(key string) string {
	for _, p := range h.panes {
		if p.split == h.focused && p.splitOpen {
			return h.modes[p.mode][key]
		}
	}
	return ""
}
