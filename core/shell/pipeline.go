package shell

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	// StatusOK is returned for a line that ran successfully.
	StatusOK = 0
	// StatusFailed is returned when a stage failed.
	StatusFailed = 1
	// StatusInvalid is returned for lines rejected before running.
	StatusInvalid = -1
)

// Pipeline is a chain of stages built from one command line.
type Pipeline struct {
	CommandLine string
	// PID is the job id, it's non-zero iff the first stage is Async.
	PID int

	contexts []*Context
	handler  *Handler

	executed     atomic.Bool
	terminated   atomic.Bool
	exitedStages atomic.Int32
	done         chan struct{}
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.contexts)
}

// Context returns the context of the i-th stage.
func (p *Pipeline) Context(i int) *Context {
	return p.context(i)
}

func (p *Pipeline) context(i int) *Context {
	if i < 0 || i >= len(p.contexts) {
		return nil
	}
	return p.contexts[i]
}

// Done is closed once every stage of the pipeline finished or was killed.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Terminated returns true once the pipeline finished or was killed.
func (p *Pipeline) Terminated() bool {
	return p.terminated.Load()
}

// Execute runs the stages last to first so every consumer is ready before
// its producer starts. A pipeline headed by an Async command is registered
// as a job if every stage succeeded.
func (p *Pipeline) Execute() int {
	failed := false
	for i := len(p.contexts) - 1; i >= 0; i-- {
		ctx := p.contexts[i]
		status, panicked := p.run(ctx)
		ctx.status = status
		if status == 0 {
			continue
		}

		failed = true
		if !panicked {
			fmt.Fprintf(ctx.Err, "command '%s' failed with error code %d\n", ctx.CommandName(), status)
		}
		p.handler.events.CommandFailed(ctx.CommandName(), status)
	}
	p.executed.Store(true)

	if failed {
		// Stages that already started are stopped rather than left running
		// without a job entry to kill them with.
		p.terminate()
		return StatusFailed
	}

	if p.PID > 0 {
		if p.handler.jobs.add(p) {
			p.handler.logger.Debug("job started", zap.Int("pid", p.PID), zap.String("command_line", p.CommandLine))
			p.handler.events.JobStarted(p.PID, p.CommandLine)
		}
		return StatusOK
	}

	for _, ctx := range p.contexts {
		if !ctx.Exited() {
			if ctx.kind.IsAsync() {
				break
			}
			ctx.Exit(ctx.status)
		}
	}
	return StatusOK
}

func (p *Pipeline) run(ctx *Context) (status int, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			err := &ExecutionError{Name: ctx.CommandName(), Cause: r}
			fmt.Fprintln(ctx.Err, err.Error())

			stack := debug.Stack()
			p.handler.logger.Error("command panicked",
				zap.String("command", ctx.CommandName()),
				zap.Any("cause", r),
				zap.ByteString("stack", stack))
			p.handler.events.Panic(ctx.CommandLine(), fmt.Sprint(r), stack)

			status, panicked = StatusFailed, true
		}
	}()

	return ctx.command.Execute(ctx), false
}

// stageExited finishes a pipeline that isn't a job once all its stages
// exited.
func (p *Pipeline) stageExited() {
	if int(p.exitedStages.Add(1)) < len(p.contexts) {
		return
	}
	p.terminate()
}

// terminate removes the job, stops every Async stage that's still running
// and exits the remaining stages. Only the first call has an effect.
func (p *Pipeline) terminate() {
	if !p.terminated.CompareAndSwap(false, true) {
		return
	}

	if p.PID > 0 {
		if _, ok := p.handler.jobs.remove(p.PID); ok {
			p.handler.logger.Debug("job finished", zap.Int("pid", p.PID), zap.String("command_line", p.CommandLine))
			p.handler.events.JobFinished(p.PID, p.CommandLine)
		}
	}

	for _, ctx := range p.contexts {
		ctx.stop()
	}
	// Stopped stages exit before their producer closes the stream, so they
	// never see a regular end of lines.
	for i := len(p.contexts) - 1; i >= 0; i-- {
		if ctx := p.contexts[i]; ctx.stopped.Load() {
			ctx.Exit(ExitKilled)
		}
	}
	for _, ctx := range p.contexts {
		ctx.Exit(ExitKilled)
	}

	close(p.done)
}
