package shell

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// run executes line on h and returns stdout, stderr and the status.
func run(t *testing.T, h *Handler, line string) (string, string, int) {
	t.Helper()

	var out, errOut bytes.Buffer
	status := h.ExecuteLine(line, &out, &errOut)
	return out.String(), errOut.String(), status
}

// trace records the order commands ran in.
type trace struct {
	mu    sync.Mutex
	calls []string
}

func (tr *trace) add(s string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.calls = append(tr.calls, s)
}

func (tr *trace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.calls...)
}

// jobProbe observes every instance of an Async test command.
type jobProbe struct {
	trace    *trace
	mu       sync.Mutex
	contexts []*Context
	stops    atomic.Int32
	status   int
}

func (jp *jobProbe) definition(argumentHelp string) Definition {
	return Definition{
		ArgumentHelp: argumentHelp,
		Help:         "test job",
		New: func() Command {
			return &probeJob{probe: jp}
		},
	}
}

func (jp *jobProbe) last() *Context {
	jp.mu.Lock()
	defer jp.mu.Unlock()
	if len(jp.contexts) == 0 {
		return nil
	}
	return jp.contexts[len(jp.contexts)-1]
}

type probeJob struct {
	probe *jobProbe
}

func (j *probeJob) Execute(ctx *Context) int {
	j.probe.mu.Lock()
	j.probe.contexts = append(j.probe.contexts, ctx)
	j.probe.mu.Unlock()
	if j.probe.trace != nil {
		j.probe.trace.add(ctx.CommandName())
	}
	return j.probe.status
}

func (j *probeJob) Stop(ctx *Context) {
	j.probe.stops.Add(1)
}

// lineProbe observes every instance of a LineConsumer test command.
type lineProbe struct {
	trace  *trace
	mu     sync.Mutex
	lines  []string
	ends   int
	status int
	async  bool
	stops  atomic.Int32
}

func (lp *lineProbe) definition() Definition {
	return Definition{
		Help: "test consumer",
		New: func() Command {
			c := &collector{probe: lp}
			if lp.async {
				return &asyncCollector{collector: c}
			}
			return c
		},
	}
}

func (lp *lineProbe) get() ([]string, int) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return append([]string(nil), lp.lines...), lp.ends
}

type collector struct {
	probe *lineProbe
	ctx   *Context
}

func (c *collector) Execute(ctx *Context) int {
	c.ctx = ctx
	if c.probe.trace != nil {
		c.probe.trace.add(ctx.CommandName())
	}
	return c.probe.status
}

func (c *collector) ConsumeLine(line string) {
	c.probe.mu.Lock()
	c.probe.lines = append(c.probe.lines, line)
	c.probe.mu.Unlock()
	fmt.Fprintln(c.ctx.Out, line)
}

func (c *collector) EndOfLines() {
	c.probe.mu.Lock()
	c.probe.ends++
	c.probe.mu.Unlock()
}

type asyncCollector struct {
	*collector
}

func (a *asyncCollector) Stop(ctx *Context) {
	a.probe.stops.Add(1)
}

// say writes its arguments as a line.
var say = Func("", "print the arguments", func(ctx *Context) int {
	fmt.Fprintln(ctx.Out, strings.Join(ctx.Args()[1:], " "))
	return 0
})
