package search

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindGitRoot walks upward from startPath looking for a .git directory.
func FindGitRoot(startPath string) (string, bool) {
	path := startPath
	for {
		if info, err := os.Stat(filepath.Join(path, ".git")); err == nil && info.IsDir() {
			return path, true
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", false
		}
		path = parent
	}
}

// GetCurrentGitRoot finds the repository root for the current working
// directory, falling back to asking git itself when the walk finds
// nothing (worktrees keep .git as a file, not a directory).
func GetCurrentGitRoot() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	if root, ok := FindGitRoot(wd); ok {
		return root, true
	}
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", false
	}
	root := strings.TrimSpace(string(out))
	return root, root != ""
}
