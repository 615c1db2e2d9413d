package search

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle is a ProcessHandle the test finishes by hand.
type fakeHandle struct {
	mu     sync.Mutex
	killed bool
	result Result
	err    error
	done   chan struct{}
	once   sync.Once
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan struct{})}
}

func finishedHandle(result Result) *fakeHandle {
	h := newFakeHandle()
	h.finish(result, nil)
	return h
}

func (h *fakeHandle) finish(result Result, err error) {
	h.once.Do(func() {
		h.mu.Lock()
		h.result = result
		h.err = err
		h.mu.Unlock()
		close(h.done)
	})
}

func (h *fakeHandle) Kill() bool {
	h.mu.Lock()
	if h.killed {
		h.mu.Unlock()
		return false
	}
	h.killed = true
	h.mu.Unlock()
	h.finish(Result{}, ErrTerminated)
	return true
}

func (h *fakeHandle) Wait() (Result, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

func (h *fakeHandle) wasKilled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.killed
}

// recorder collects delivered results and log lines.
type recorder struct {
	mu        sync.Mutex
	delivered []string
	logs      []string
}

func (r *recorder) deliver(tag string) func(Result) {
	return func(Result) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.delivered = append(r.delivered, tag)
	}
}

func (r *recorder) logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recorder) deliveredTags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.delivered...)
}

func (r *recorder) logLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logs...)
}

func TestShortQueryNeverInvokesExecutor(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	var calls int32
	exec := func() (ProcessHandle, error) {
		atomic.AddInt32(&calls, 1)
		return finishedHandle(Result{}), nil
	}

	rec := &recorder{}
	c.Search("", exec, rec.deliver(""))
	c.Search("a", exec, rec.deliver("a"))
	c.Search("  b  ", exec, rec.deliver("b"))

	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Empty(t, rec.deliveredTags())
}

func TestSearchDeliversResult(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	var got *Result
	exec := func() (ProcessHandle, error) {
		return finishedHandle(Result{Stdout: "a.go:1:1:x\n"}), nil
	}

	c.Search("needle", exec, func(r Result) { got = &r })

	require.NotNil(t, got)
	assert.Equal(t, "a.go:1:1:x\n", got.Stdout)
}

func TestDuplicateQuerySuppressed(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	var calls int32
	exec := func() (ProcessHandle, error) {
		atomic.AddInt32(&calls, 1)
		return finishedHandle(Result{}), nil
	}
	rec := &recorder{}

	c.Search("needle", exec, rec.deliver("first"))
	c.Search("needle", exec, rec.deliver("second"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"first"}, rec.deliveredTags())

	c.Search("other", exec, rec.deliver("third"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"first", "third"}, rec.deliveredTags())
}

func TestNewerCallSupersedesDebouncingOne(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}
	c.Logf = rec.logf

	firstInDebounce := make(chan struct{})
	releaseFirst := make(chan struct{})
	var sleeps int32
	c.sleep = func(time.Duration) {
		if atomic.AddInt32(&sleeps, 1) == 1 {
			close(firstInDebounce)
			<-releaseFirst
		}
	}

	started := make(chan *fakeHandle, 2)
	exec := func() (ProcessHandle, error) {
		h := newFakeHandle()
		started <- h
		return h, nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.Search("first", exec, rec.deliver("first"))
	}()
	<-firstInDebounce

	done := make(chan struct{})
	go func() {
		defer wg.Done()
		c.Search("second", exec, rec.deliver("second"))
		close(done)
	}()

	h2 := <-started
	h2.finish(Result{Stdout: "hit"}, nil)
	<-done

	// The superseded call wakes up, sees a newer version, and must
	// discard silently without ever spawning its own process.
	close(releaseFirst)
	wg.Wait()

	assert.Equal(t, []string{"second"}, rec.deliveredTags())
	assert.Empty(t, rec.logLines())
	select {
	case <-started:
		t.Fatal("superseded call started a process")
	default:
	}
}

func TestSupersededProcessKilledBeforeNextStarts(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}
	c.Logf = rec.logf

	started := make(chan *fakeHandle, 2)
	exec := func() (ProcessHandle, error) {
		h := newFakeHandle()
		started <- h
		return h, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Search("first", exec, rec.deliver("first"))
	}()
	h1 := <-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Search("second", exec, rec.deliver("second"))
	}()
	h2 := <-started

	// The second executor only runs after the first process's
	// termination was both requested and awaited.
	assert.True(t, h1.wasKilled())

	h2.finish(Result{}, nil)
	wg.Wait()

	assert.Equal(t, []string{"second"}, rec.deliveredTags())
	// Termination-induced errors are expected, not diagnostics.
	assert.Empty(t, rec.logLines())
}

func TestCancelKillsActiveProcessWithoutDelivery(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}

	started := make(chan *fakeHandle, 1)
	exec := func() (ProcessHandle, error) {
		h := newFakeHandle()
		started <- h
		return h, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Search("needle", exec, rec.deliver("needle"))
	}()
	h := <-started

	c.Cancel()
	c.Cancel() // idempotent
	wg.Wait()

	assert.True(t, h.wasKilled())
	assert.Empty(t, rec.deliveredTags())
}

func TestCancelKeepsLastQueryResetClearsIt(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	var calls int32
	exec := func() (ProcessHandle, error) {
		atomic.AddInt32(&calls, 1)
		return finishedHandle(Result{}), nil
	}
	rec := &recorder{}

	c.Search("needle", exec, rec.deliver("1"))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.Cancel()
	c.Search("needle", exec, rec.deliver("2"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "cancel must not clear duplicate suppression")

	c.Reset()
	c.Search("needle", exec, rec.deliver("3"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "reset starts a clean session")
}

func TestKilledSearchDoesNotSuppressRetype(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}
	c.Logf = rec.logf

	started := make(chan *fakeHandle, 1)
	hang := func() (ProcessHandle, error) {
		h := newFakeHandle()
		started <- h
		return h, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Search("needle", hang, rec.deliver("first"))
	}()
	h := <-started

	// Backspacing to nothing kills the in-flight process; nothing was
	// ever delivered for the query.
	c.Search("", hang, rec.deliver(""))
	wg.Wait()
	require.True(t, h.wasKilled())
	require.Empty(t, rec.deliveredTags())

	// Retyping the exact same query must run a fresh process instead
	// of being treated as a duplicate of the unanswered attempt.
	done := func() (ProcessHandle, error) {
		return finishedHandle(Result{Stdout: "hit"}), nil
	}
	c.Search("needle", done, rec.deliver("second"))

	assert.Equal(t, []string{"second"}, rec.deliveredTags())
	assert.Empty(t, rec.logLines())
}

func TestFailedSearchDoesNotSuppressRetry(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}
	c.Logf = rec.logf

	failing := func() (ProcessHandle, error) {
		h := newFakeHandle()
		h.finish(Result{}, errors.New("boom"))
		return h, nil
	}
	c.Search("needle", failing, rec.deliver("first"))
	require.Empty(t, rec.deliveredTags())
	require.Len(t, rec.logLines(), 1)

	done := func() (ProcessHandle, error) {
		return finishedHandle(Result{Stdout: "hit"}), nil
	}
	c.Search("needle", done, rec.deliver("second"))

	assert.Equal(t, []string{"second"}, rec.deliveredTags())
}

func TestVersionIncrementsPerCall(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	exec := func() (ProcessHandle, error) {
		return finishedHandle(Result{}), nil
	}

	c.Search("aa", exec, func(Result) {})
	c.Search("bb", exec, func(Result) {})
	c.Search("c", exec, func(Result) {}) // short input still tags a version

	assert.Equal(t, uint64(3), c.version)

	c.Reset()
	assert.Equal(t, uint64(0), c.version)
}

func TestExecutorStartFailureIsLoggedNotDelivered(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}
	c.Logf = rec.logf

	exec := func() (ProcessHandle, error) {
		return nil, errors.New("spawn failed")
	}
	c.Search("needle", exec, rec.deliver("needle"))

	assert.Empty(t, rec.deliveredTags())
	require.Len(t, rec.logLines(), 1)
	assert.Contains(t, rec.logLines()[0], "spawn failed")

	// A spawn failure must not count as an answered query.
	ok := func() (ProcessHandle, error) {
		return finishedHandle(Result{}), nil
	}
	c.Search("needle", ok, rec.deliver("retry"))
	assert.Equal(t, []string{"retry"}, rec.deliveredTags())
}

func TestGenuineProcessFailureIsLoggedNotDelivered(t *testing.T) {
	c := &Coordinator{Debounce: time.Millisecond}
	rec := &recorder{}
	c.Logf = rec.logf

	exec := func() (ProcessHandle, error) {
		h := newFakeHandle()
		h.finish(Result{}, errors.New("boom"))
		return h, nil
	}
	c.Search("needle", exec, rec.deliver("needle"))

	assert.Empty(t, rec.deliveredTags())
	require.Len(t, rec.logLines(), 1)
	assert.Contains(t, rec.logLines()[0], "boom")
}
