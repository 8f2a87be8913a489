package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/josephlewis42/simshell/core/shell"
)

// ErrExecDisabled is reported when exec runs in an environment that doesn't
// allow host programs.
var ErrExecDisabled = errors.New("running host programs is disabled")

// execCommand runs a host program as a job. Input lines are written to the
// program's stdin, its stdout and stderr become the stage's output and
// diagnostics.
type execCommand struct {
	allow bool

	mu     sync.Mutex
	cancel context.CancelFunc

	// stdinMu is held across writes, which block while the program isn't
	// reading.
	stdinMu sync.Mutex
	stdin   io.WriteCloser
}

func (e *execCommand) Execute(ctx *shell.Context) int {
	if !e.allow {
		fmt.Fprintf(ctx.Err, "exec: %v\n", ErrExecDisabled)
		return 1
	}

	args := ctx.Args()
	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, args[1], args[2:]...)
	cmd.Stdout = ctx.Out
	cmd.Stderr = ctx.Err
	// Orphaned children holding the output open don't keep the job alive.
	cmd.WaitDelay = time.Second

	stdin, err := cmd.StdinPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		cancel()
		fmt.Fprintf(ctx.Err, "exec: %v\n", err)
		return 1
	}

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.stdinMu.Lock()
	e.stdin = stdin
	e.stdinMu.Unlock()

	go e.wait(ctx, cmd, cancel)
	return 0
}

func (e *execCommand) wait(ctx *shell.Context, cmd *exec.Cmd, cancel context.CancelFunc) {
	err := cmd.Wait()
	cancel()

	code := 0
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	case err != nil:
		fmt.Fprintf(ctx.Err, "exec: %v\n", err)
		code = 1
	}
	ctx.Exit(code)
}

func (e *execCommand) ConsumeLine(line string) {
	e.stdinMu.Lock()
	defer e.stdinMu.Unlock()

	if e.stdin == nil {
		return
	}
	// The program stopped reading, drop the rest of the input.
	if _, err := io.WriteString(e.stdin, line+"\n"); err != nil {
		e.stdin.Close()
		e.stdin = nil
	}
}

func (e *execCommand) EndOfLines() {
	e.stdinMu.Lock()
	defer e.stdinMu.Unlock()

	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
}

// Stop kills the program.
func (e *execCommand) Stop(ctx *shell.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
}

var _ shell.Async = (*execCommand)(nil)
var _ shell.LineConsumer = (*execCommand)(nil)

// Exec runs a host program in the background, feeding it the pipeline's
// lines.
func Exec(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "<program> [args...]",
		Help:         "execute the specified host program",
		New: func() shell.Command {
			return &execCommand{allow: env.AllowExec}
		},
	}
}

func init() {
	addCmd("exec", Exec)
}
