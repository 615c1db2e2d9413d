package search

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrTerminated reports that a process exited because Kill was
// requested, as opposed to failing on its own.
var ErrTerminated = errors.New("process terminated")

// Result carries everything a finished process produced. A non-zero
// exit code is an outcome, not an error; ripgrep exits 1 when nothing
// matched.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ProcessHandle is a running external command that can be awaited and
// asked to terminate at any time.
type ProcessHandle interface {
	// Kill requests termination. Idempotent; reports whether this call
	// delivered the signal.
	Kill() bool
	// Wait blocks until the process exits and returns its captured
	// output. Safe to call from multiple goroutines; every caller sees
	// the same outcome. After Kill it returns ErrTerminated.
	Wait() (Result, error)
}

// Executor starts one external search operation.
type Executor func() (ProcessHandle, error)

// Process is the os/exec-backed ProcessHandle.
type Process struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer

	mu     sync.Mutex
	killed bool

	waitOnce sync.Once
	result   Result
	waitErr  error
}

// StartProcess spawns name with args in dir (empty means inherit the
// current directory), capturing stdout and stderr.
func StartProcess(name string, args []string, dir string) (*Process, error) {
	p := &Process{cmd: exec.Command(name, args...)}
	p.cmd.Dir = dir
	p.cmd.Stdout = &p.stdout
	p.cmd.Stderr = &p.stderr
	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return p, nil
}

// Kill sends the kill signal to the process. The first call wins;
// later calls report false.
func (p *Process) Kill() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.killed {
		return false
	}
	p.killed = true
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	return true
}

// Wait blocks until the process exits. The underlying wait runs once;
// concurrent and repeated callers all receive the same result.
func (p *Process) Wait() (Result, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()

		p.result = Result{Stdout: p.stdout.String(), Stderr: p.stderr.String()}
		if state := p.cmd.ProcessState; state != nil {
			p.result.ExitCode = state.ExitCode()
		}

		p.mu.Lock()
		killed := p.killed
		p.mu.Unlock()

		switch {
		case killed:
			p.waitErr = ErrTerminated
		case err != nil:
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				p.waitErr = err
			}
			// Non-zero exit is reported through ExitCode.
		}
	})
	return p.result, p.waitErr
}

// IsTermination reports whether err came from a deliberate Kill.
// Handles from this package signal it with ErrTerminated; for foreign
// handles fall back to the markers the OS produces for killed or
// missing commands.
func IsTermination(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTerminated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "killed") || strings.Contains(msg, "not found")
}

// RgExecutor returns an Executor that runs ripgrep for query under dir.
// globPattern narrows the file set when non-empty.
func RgExecutor(query, globPattern, dir string) Executor {
	return func() (ProcessHandle, error) {
		args := []string{
			"--vimgrep",
			"--no-heading",
			"--color=never",
		}
		if globPattern != "" {
			args = append(args, "--glob", globPattern)
		}
		args = append(args, "--", query)
		return StartProcess("rg", args, dir)
	}
}
