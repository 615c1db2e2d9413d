package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor represents an editor type
type Editor string

const (
	EditorCursor Editor = "cursor"
	EditorCode   Editor = "code"
)

// DetectEditor detects which editor is available on PATH
func DetectEditor() (Editor, error) {
	if _, err := exec.LookPath("cursor"); err == nil {
		return EditorCursor, nil
	}
	if _, err := exec.LookPath("code"); err == nil {
		return EditorCode, nil
	}
	return "", fmt.Errorf("no editor found (cursor or code)")
}

// OpenFile opens a file in the specified editor at the given line and column
func OpenFile(editor Editor, file string, line, column int) error {
	args := []string{
		"--goto",
		fmt.Sprintf("%s:%d:%d", file, line, column),
	}

	// Reuse the surrounding editor window instead of opening a new one
	// when we are already running inside it.
	if isRunningInEditor() {
		args = append([]string{"--reuse-window"}, args...)
	}

	cmd := exec.Command(string(editor), args...)
	// Discard output so the editor process cannot write into the TUI.
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't block the TUI on the editor command; reap it in background.
	go cmd.Wait()

	return nil
}

// isRunningInEditor checks whether the process is inside a Cursor or
// VS Code integrated terminal.
func isRunningInEditor() bool {
	if hook := os.Getenv("VSCODE_IPC_HOOK"); hook != "" {
		if _, err := os.Stat(hook); err == nil || strings.HasSuffix(hook, ".sock") {
			return true
		}
	}
	if os.Getenv("CURSOR_PID") != "" || os.Getenv("VSCODE_PID") != "" {
		return true
	}
	return os.Getenv("CURSOR_AGENT") != ""
}
