package search

import (
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// DefaultDebounce is how long a query must sit unchanged before a
	// process is spawned for it.
	DefaultDebounce = 150 * time.Millisecond

	// DefaultMinQueryLength is the shortest trimmed query that triggers
	// a search.
	DefaultMinQueryLength = 2
)

// Coordinator runs at most one logical search at a time. Each call to
// Search supersedes every earlier one: the previous process is killed
// and its cleanup awaited before a new process may start, and a
// monotonic version counter decides whose results are still wanted.
//
// Search blocks through the debounce window and the process run, so
// callers invoke it from their own goroutine (in the TUI, a Bubble Tea
// command). All session state is guarded by one mutex; every await is
// followed by a version re-check under that lock, which keeps results
// ordered no matter how the underlying processes finish.
type Coordinator struct {
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
	// MinQueryLength overrides DefaultMinQueryLength when positive.
	MinQueryLength int
	// Logf receives non-fatal internal errors. Defaults to log.Printf.
	Logf func(format string, args ...any)

	mu          sync.Mutex
	version     uint64
	lastQuery   string
	active      ProcessHandle
	pendingTerm <-chan struct{}

	sleep func(time.Duration) // test seam
}

// NewCoordinator returns a Coordinator with default settings.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Search runs one debounced search for query. start is invoked only
// once the query has survived the debounce window and the staleness
// checks; onResults is invoked at most once, and only if no newer call
// has superseded this one by the time the process finishes.
//
// Errors never propagate: termination-induced failures are expected
// under rapid typing and are swallowed, anything else goes to Logf.
func (c *Coordinator) Search(query string, start Executor, onResults func(Result)) {
	c.mu.Lock()
	c.version++
	thisVersion := c.version
	// Whatever is running belongs to an older call now. Hand it to a
	// background termination and drop ownership before anything else.
	c.terminateLocked()
	term := c.pendingTerm
	c.mu.Unlock()

	if utf8.RuneCountInString(strings.TrimSpace(query)) < c.minQueryLength() {
		// No search for short input, but the previous process's
		// cleanup must still be observed.
		if term != nil {
			<-term
		}
		return
	}

	c.wait(c.debounce())

	if term != nil {
		<-term
	}

	c.mu.Lock()
	if c.version != thisVersion {
		// A newer call arrived while we slept.
		c.mu.Unlock()
		return
	}
	if query == c.lastQuery {
		c.mu.Unlock()
		return
	}
	c.lastQuery = query
	handle, err := start()
	if err != nil {
		c.lastQuery = ""
		c.mu.Unlock()
		c.logf("search: %v", err)
		return
	}
	c.active = handle
	c.mu.Unlock()

	result, err := handle.Wait()

	c.mu.Lock()
	current := c.version == thisVersion
	if current && c.active == handle {
		c.active = nil
	}
	if (!current || err != nil) && c.lastQuery == query {
		// The result was never accepted, so the same query must be
		// allowed to run again.
		c.lastQuery = ""
	}
	c.mu.Unlock()

	if err != nil {
		if !current || IsTermination(err) {
			return
		}
		c.logf("search: %v", err)
		return
	}
	if current {
		onResults(result)
	}
}

// Cancel terminates any active process and clears ownership. The last
// accepted query and the version counter are untouched. Idempotent.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.terminateLocked()
	c.mu.Unlock()
}

// Reset cancels any active process and clears the session's staleness
// bookkeeping. Used when the owning UI session closes so a reopened
// one starts clean.
func (c *Coordinator) Reset() {
	c.Cancel()
	c.mu.Lock()
	c.lastQuery = ""
	c.version = 0
	c.mu.Unlock()
}

// terminateLocked moves the active process, if any, into a background
// kill-and-await and records it as the pending termination. Callers
// hold c.mu.
func (c *Coordinator) terminateLocked() {
	if c.active == nil {
		return
	}
	handle := c.active
	c.active = nil
	done := make(chan struct{})
	c.pendingTerm = done
	go func() {
		handle.Kill()
		handle.Wait()
		close(done)
	}()
}

func (c *Coordinator) debounce() time.Duration {
	if c.Debounce > 0 {
		return c.Debounce
	}
	return DefaultDebounce
}

func (c *Coordinator) minQueryLength() int {
	if c.MinQueryLength > 0 {
		return c.MinQueryLength
	}
	return DefaultMinQueryLength
}

func (c *Coordinator) wait(d time.Duration) {
	if c.sleep != nil {
		c.sleep(d)
		return
	}
	time.Sleep(d)
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
