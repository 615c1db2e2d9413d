// Package host declares the narrow editor capability surface the
// search UI consumes. The backing implementation may be a local panel
// manager or a bridge into another process; callers must not assume
// anything beyond these operations.
package host

import "os"

// BufferID identifies a virtual buffer owned by the editor host.
type BufferID int

// SplitID identifies a split owned by the editor host.
type SplitID int

// Orientation of a newly created split.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// BufferOptions describe the virtual buffer and split to create.
type BufferOptions struct {
	Content     string
	Mode        string // input mode active inside the buffer
	Ratio       float64
	Orientation Orientation
	// PanelID makes repeated creation requests idempotent: asking for
	// an existing panel updates its content instead of opening another
	// split.
	PanelID string
}

// Host exposes the editor operations the search UI needs.
type Host interface {
	// DefineMode registers a named read-only input mode with the given
	// key bindings (key name to command name).
	DefineMode(name string, bindings map[string]string) error
	// CreateVirtualBuffer creates a read-only virtual buffer inside a
	// new split and returns both handles.
	CreateVirtualBuffer(opts BufferOptions) (BufferID, SplitID, error)
	SetBufferContent(id BufferID, content string) error
	CloseBuffer(id BufferID) error
	CloseSplit(id SplitID) error
	FocusSplit(id SplitID) error
}

// FileReader reads whole files for preview rendering.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// OSFileReader reads from the local filesystem.
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
