package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// LineSink is the destination behind a Target, e.g. a file or a window.
type LineSink interface {
	WriteLine(line string) error
	Close() error
}

// Opener creates the sink for a newly opened target.
type Opener func(name string, append bool) (LineSink, error)

// TargetRegistry holds the named sinks that stages redirect into. A target
// stays open while it has writers.
type TargetRegistry struct {
	// mu guards targets and the writer set of every target.
	mu      sync.Mutex
	targets map[string]*Target
	open    Opener
}

// NewTargetRegistry creates a registry that opens sinks with open.
func NewTargetRegistry(open Opener) *TargetRegistry {
	return &TargetRegistry{
		targets: make(map[string]*Target),
		open:    open,
	}
}

// Target is a named sink shared by the stages writing into it.
type Target struct {
	name     string
	registry *TargetRegistry
	sink     LineSink

	writers []*Context
	closed  bool

	// writeMu serializes writes and the final close of the sink.
	writeMu    sync.Mutex
	sinkClosed bool
}

// Open returns the target with the given name, opening its sink if needed.
// An open target is only shared when appending.
func (r *TargetRegistry) Open(name string, append bool) (*Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.targets[name]; ok {
		if !append {
			return nil, &AlreadyOpenError{Name: name}
		}
		return t, nil
	}

	sink, err := r.open(name, append)
	if err != nil {
		return nil, &RedirectionError{Name: name, Op: "open", Err: err}
	}

	t := &Target{name: name, registry: r, sink: sink}
	r.targets[name] = t
	return t, nil
}

// Get returns the open target with the given name.
func (r *TargetRegistry) Get(name string) (*Target, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.targets[name]
	return t, ok
}

// List returns the open targets sorted by name.
func (r *TargetRegistry) List() []*Target {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Target
	for _, t := range r.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].name < out[j].name
	})
	return out
}

// Name returns the name the target was opened with.
func (t *Target) Name() string {
	return t.name
}

// Attach adds ctx as a writer. If the target was closed in the meantime the
// writer is killed.
func (t *Target) Attach(ctx *Context) {
	r := t.registry
	r.mu.Lock()
	added := !t.closed
	if added {
		t.writers = append(t.writers, ctx)
	}
	r.mu.Unlock()

	if !added {
		ctx.Kill()
	}
}

// Detach removes ctx from the writers, closing the target if it was the
// last one.
func (t *Target) Detach(ctx *Context) {
	r := t.registry
	r.mu.Lock()
	if t.closed {
		r.mu.Unlock()
		return
	}

	found := false
	for i, w := range t.writers {
		if w == ctx {
			t.writers = append(t.writers[:i], t.writers[i+1:]...)
			found = true
			break
		}
	}

	last := found && len(t.writers) == 0
	if last {
		t.markClosedLocked()
	}
	r.mu.Unlock()

	if last {
		t.closeSink()
	}
}

// ForceClose closes the target regardless of its writers, which are killed.
// It returns false if the target was already closed.
func (t *Target) ForceClose() bool {
	r := t.registry
	r.mu.Lock()
	if t.closed {
		r.mu.Unlock()
		return false
	}
	writers := t.writers
	t.markClosedLocked()
	r.mu.Unlock()

	for _, w := range writers {
		w.Kill()
	}
	t.closeSink()
	return true
}

// markClosedLocked must be called with the registry lock held.
func (t *Target) markClosedLocked() {
	t.closed = true
	t.writers = nil
	if t.registry.targets[t.name] == t {
		delete(t.registry.targets, t.name)
	}
}

func (t *Target) closeSink() {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.sinkClosed {
		return
	}
	t.sinkClosed = true
	t.sink.Close()
}

// WriteLine writes a line for ctx. Failures are reported on ctx.Err.
func (t *Target) WriteLine(ctx *Context, line string) {
	t.writeMu.Lock()
	var err error
	if t.sinkClosed {
		err = ErrTargetClosed
	} else {
		err = t.sink.WriteLine(line)
	}
	t.writeMu.Unlock()

	if err != nil && ctx != nil {
		fmt.Fprintln(ctx.Err, (&RedirectionError{Name: t.name, Op: "write", Err: err}).Error())
	}
}

// Closed returns true once the target left its registry.
func (t *Target) Closed() bool {
	t.registry.mu.Lock()
	defer t.registry.mu.Unlock()

	return t.closed
}

// Writers returns the number of attached writers.
func (t *Target) Writers() int {
	t.registry.mu.Lock()
	defer t.registry.mu.Unlock()

	return len(t.writers)
}

// Status describes the target and the pids of its writers, writers that
// aren't part of a job are shown as ?.
func (t *Target) Status() string {
	t.registry.mu.Lock()
	defer t.registry.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(t.name)
	if t.closed {
		return sb.String()
	}

	sb.WriteString(" \tPIDs: [")
	for i, w := range t.writers {
		if i > 0 {
			sb.WriteByte(',')
		}
		if w.PID() <= 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteString(strconv.Itoa(w.PID()))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
