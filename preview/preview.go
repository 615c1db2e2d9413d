// Package preview manages the match preview pane: a single virtual
// buffer in a split, created lazily for the first selected match and
// updated in place while the user navigates results.
package preview

import (
	"fmt"
	"log"
	"strings"

	"livegrep/host"
	"livegrep/search"
)

const (
	contextBefore = 5
	contextAfter  = 5

	// DefaultRatio is the preview split's share of the screen.
	DefaultRatio = 0.5

	panelID   = "search-preview"
	modeName  = "search_preview"
	closeKey  = "q"
	ruleWidth = 40
)

// Preview owns the lifecycle of the preview pane. Handles are either
// both present or both absent; Close drops them and is safe to repeat.
type Preview struct {
	// Ratio overrides DefaultRatio when positive.
	Ratio float64
	// Logf receives non-fatal errors. Defaults to log.Printf.
	Logf func(format string, args ...any)

	host  host.Host
	files host.FileReader

	buffer        *host.BufferID
	split         *host.SplitID
	originalSplit *host.SplitID
	modeDefined   bool
}

// New returns a Preview that renders through h and reads files via fr.
func New(h host.Host, fr host.FileReader) *Preview {
	return &Preview{host: h, files: fr}
}

// SetOriginalSplit records the split that should keep input focus; it
// is re-focused right after the preview pane is first created so typing
// keeps going to the search prompt.
func (p *Preview) SetOriginalSplit(id host.SplitID) {
	p.originalSplit = &id
}

// IsOpen reports whether a preview buffer currently exists.
func (p *Preview) IsOpen() bool {
	return p.buffer != nil
}

// Update renders match with its surrounding context into the pane,
// creating the pane on first use. Any failure is reported to Logf and
// leaves the previously rendered content in place.
func (p *Preview) Update(match search.Match) {
	// Render before touching any host resource so a read failure
	// cannot leave the pane half-updated.
	content, err := p.render(match)
	if err != nil {
		p.logf("preview: %v", err)
		return
	}

	if p.buffer != nil {
		if err := p.host.SetBufferContent(*p.buffer, content); err != nil {
			p.logf("preview: %v", err)
		}
		return
	}

	if !p.modeDefined {
		bindings := map[string]string{closeKey: "close_buffer"}
		if err := p.host.DefineMode(modeName, bindings); err != nil {
			p.logf("preview: %v", err)
			return
		}
		p.modeDefined = true
	}

	buffer, split, err := p.host.CreateVirtualBuffer(host.BufferOptions{
		Content:     content,
		Mode:        modeName,
		Ratio:       p.ratio(),
		Orientation: host.Vertical,
		PanelID:     panelID,
	})
	if err != nil {
		p.logf("preview: %v", err)
		return
	}
	p.buffer = &buffer
	p.split = &split

	if p.originalSplit != nil {
		if err := p.host.FocusSplit(*p.originalSplit); err != nil {
			p.logf("preview: %v", err)
		}
	}
}

// Close releases the pane's buffer and split and forgets the original
// split. Safe to call repeatedly and before the pane ever existed.
func (p *Preview) Close() {
	if p.buffer != nil {
		if err := p.host.CloseBuffer(*p.buffer); err != nil {
			p.logf("preview: %v", err)
		}
	}
	if p.split != nil {
		if err := p.host.CloseSplit(*p.split); err != nil {
			p.logf("preview: %v", err)
		}
	}
	p.buffer = nil
	p.split = nil
	p.originalSplit = nil
}

// render builds the preview block: a file:line:column header, a rule,
// then the match line with up to contextBefore/contextAfter lines
// around it, clamped to the file. The hit line carries a "> " marker.
func (p *Preview) render(match search.Match) (string, error) {
	raw, err := p.files.ReadFile(match.File)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", match.File, err)
	}
	lines := strings.Split(strings.TrimSuffix(raw, "\n"), "\n")

	start := match.Line - contextBefore
	if start < 1 {
		start = 1
	}
	end := match.Line + contextAfter
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d\n", match.File, match.Line, match.Column)
	b.WriteString(strings.Repeat("─", ruleWidth))
	b.WriteString("\n")
	for n := start; n <= end; n++ {
		marker := "  "
		if n == match.Line {
			marker = "> "
		}
		fmt.Fprintf(&b, "%4d %s%s\n", n, marker, lines[n-1])
	}
	return b.String(), nil
}

func (p *Preview) ratio() float64 {
	if p.Ratio > 0 {
		return p.Ratio
	}
	return DefaultRatio
}

func (p *Preview) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
