package shell

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
)

// ExitKilled is the exit code of a context terminated by kill or by a target
// closed underneath it.
const ExitKilled = -9

// SymbolLookup resolves symbol names to addresses.
type SymbolLookup interface {
	Lookup(name string) (int, bool)
}

// Context is the invocation state of a single pipeline stage.
type Context struct {
	// Out receives the stage's output. For every stage but the last it
	// forwards lines to the next stage.
	Out io.Writer
	// Err receives diagnostics, it's shared by all stages of a pipeline.
	Err io.Writer

	args     []string
	pid      int
	index    int
	command  Command
	kind     Kind
	pipeline *Pipeline
	symbols  SymbolLookup
	forward  *lineWriter
	status   int

	exited   atomic.Bool
	stopped  atomic.Bool
	exitCode atomic.Int32
}

// PID returns the job id of the owning pipeline or 0 if it isn't a job.
func (c *Context) PID() int {
	return c.pid
}

// CommandName returns the name the stage was invoked with.
func (c *Context) CommandName() string {
	return c.args[0]
}

// CommandLine returns the full line the pipeline was built from.
func (c *Context) CommandLine() string {
	if c.pipeline == nil {
		return strings.Join(c.args, " ")
	}
	return c.pipeline.CommandLine
}

// ArgumentCount returns the number of positional arguments.
func (c *Context) ArgumentCount() int {
	return len(c.args) - 1
}

// Argument returns the i-th positional argument, the first one is 0.
func (c *Context) Argument(i int) string {
	if i < 0 || i+1 >= len(c.args) {
		return ""
	}
	return c.args[i+1]
}

// Args returns the full argument vector, including the command name.
func (c *Context) Args() []string {
	return append([]string(nil), c.args...)
}

// HasOption returns true if -name appears among the arguments.
func (c *Context) HasOption(name string) bool {
	opt := "-" + name
	for _, arg := range c.args[1:] {
		if arg == opt {
			return true
		}
	}
	return false
}

// Exited returns true once Exit was called.
func (c *Context) Exited() bool {
	return c.exited.Load()
}

// ExitCode returns the code passed to the first Exit call.
func (c *Context) ExitCode() int {
	return int(c.exitCode.Load())
}

func (c *Context) reportFormat(arg string, hex bool, err error) {
	fmt.Fprintln(c.Err, (&FormatError{Argument: arg, Hex: hex, Err: err}).Error())
}

// ArgumentAsAddress interprets the i-th argument as an address: $ prefixed
// hex, decimal or a symbol name. Unknown symbols resolve to -1, malformed
// numbers are reported on Err and resolve to 0.
func (c *Context) ArgumentAsAddress(i int) int {
	adr := strings.TrimSpace(c.Argument(i))
	if adr == "" {
		return 0
	}

	switch {
	case adr[0] == '$':
		v, err := strconv.ParseInt(adr[1:], 16, 64)
		if err != nil {
			c.reportFormat(adr, true, err)
			return 0
		}
		return int(v)

	case adr[0] >= '0' && adr[0] <= '9':
		v, err := strconv.ParseInt(adr, 10, 64)
		if err != nil {
			c.reportFormat(adr, false, err)
			return 0
		}
		return int(v)

	default:
		if c.symbols == nil {
			return -1
		}
		if v, ok := c.symbols.Lookup(adr); ok {
			return v
		}
		return -1
	}
}

// ArgumentAsInt parses the i-th argument as a 32 bit integer.
func (c *Context) ArgumentAsInt(i int) int {
	v, err := strconv.ParseInt(c.Argument(i), 10, 32)
	if err != nil {
		c.reportFormat(c.Argument(i), false, err)
		return 0
	}
	return int(v)
}

// ArgumentAsLong parses the i-th argument as a 64 bit integer.
func (c *Context) ArgumentAsLong(i int) int64 {
	v, err := strconv.ParseInt(c.Argument(i), 10, 64)
	if err != nil {
		c.reportFormat(c.Argument(i), false, err)
		return 0
	}
	return v
}

// ArgumentAsFloat parses the i-th argument as a 32 bit float.
func (c *Context) ArgumentAsFloat(i int) float32 {
	v, err := strconv.ParseFloat(c.Argument(i), 32)
	if err != nil {
		c.reportFormat(c.Argument(i), false, err)
		return 0
	}
	return float32(v)
}

// ArgumentAsDouble parses the i-th argument as a 64 bit float.
func (c *Context) ArgumentAsDouble(i int) float64 {
	v, err := strconv.ParseFloat(c.Argument(i), 64)
	if err != nil {
		c.reportFormat(c.Argument(i), false, err)
		return 0
	}
	return v
}

// ExecuteCommand runs a nested command line writing to this stage's Out and
// Err.
func (c *Context) ExecuteCommand(line string) int {
	if c.pipeline == nil || c.pipeline.handler == nil {
		fmt.Fprintln(c.Err, "Error: no command handler available")
		return StatusFailed
	}
	return c.pipeline.handler.ExecuteLine(line, c.Out, c.Err)
}

// Exit marks the stage as finished. Only the first call has an effect: it
// delivers end of lines to the next stage and, if the pipeline is a job,
// terminates it.
func (c *Context) Exit(code int) {
	if !c.exited.CompareAndSwap(false, true) {
		return
	}
	c.exitCode.Store(int32(code))

	if c.forward != nil {
		c.forward.Close()
	}

	p := c.pipeline
	if p == nil {
		return
	}

	if next := p.context(c.index + 1); next != nil && !next.kind.IsAsync() && p.executed.Load() {
		next.Exit(next.status)
	}

	if c.pid > 0 {
		p.terminate()
	} else {
		p.stageExited()
	}
}

// Kill stops the stage's command and exits with ExitKilled. Targets use it
// to signal writers that they were closed.
func (c *Context) Kill() {
	c.stop()
	c.Exit(ExitKilled)
}

// stop calls the command's Stop at most once.
func (c *Context) stop() {
	if !c.kind.IsAsync() || c.exited.Load() {
		return
	}
	if !c.stopped.CompareAndSwap(false, true) {
		return
	}
	if async, ok := c.command.(Async); ok {
		async.Stop(c)
	}
}

// String formats the context the way ps lists it.
func (c *Context) String() string {
	return fmt.Sprintf("%d\t%s", c.pid, c.CommandLine())
}
