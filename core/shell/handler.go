package shell

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/josephlewis42/simshell/core/logger"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Handler parses, builds and runs command lines and tracks the resulting
// jobs.
type Handler struct {
	registry *Registry
	jobs     *JobTable
	pids     atomic.Int64

	symbols SymbolLookup
	logger  *zap.Logger
	events  *logger.Recorder
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithSymbols sets the symbol table used to resolve address arguments.
func WithSymbols(s SymbolLookup) Option {
	return func(h *Handler) {
		h.symbols = s
	}
}

// WithRecorder sets the event recorder.
func WithRecorder(r *logger.Recorder) Option {
	return func(h *Handler) {
		h.events = r
	}
}

// WithScripts runs <dir>/<name>.sc files from fs for unknown command names.
func WithScripts(fs afero.Fs, dir string) Option {
	return func(h *Handler) {
		h.registry.SetScripts(fs, dir)
	}
}

// NewHandler creates a handler with the help, ps and kill commands
// registered.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		jobs:   &JobTable{},
		logger: zap.NewNop(),
	}
	h.registry = NewRegistry(h.logger)

	for _, opt := range opts {
		opt(h)
	}
	h.registry.logger = h.logger

	h.registerBuiltins()
	return h
}

// Registry returns the command registry.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// Jobs returns the job table.
func (h *Handler) Jobs() *JobTable {
	return h.jobs
}

// Register adds a command, replacing any with the same name.
func (h *Handler) Register(name string, def Definition) error {
	return h.registry.Register(name, def)
}

// Build validates the parsed stages of line and wires them into a pipeline.
// Nothing is executed and no pid is used up if validation fails.
func (h *Handler) Build(line string, stages [][]string, out, errOut io.Writer) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, &ParseError{Line: line, Reason: "empty command"}
	}

	commands := make([]Command, len(stages))
	kinds := make([]Kind, len(stages))
	for i, tokens := range stages {
		if len(tokens) == 0 {
			return nil, &ParseError{Line: line, Reason: "empty command"}
		}
		name := tokens[0]

		cmd, kind, err := h.registry.Resolve(name)
		if err != nil {
			return nil, err
		}

		if i > 0 {
			// The kind comes from the instance made at registration, the
			// factory may still hand out something else.
			if _, ok := cmd.(LineConsumer); !ok || !kind.ConsumesLines() {
				return nil, &PipingError{Name: name}
			}
		}

		argumentHelp, _, _ := h.registry.Help(name)
		if required := RequiredArguments(argumentHelp); len(tokens)-1 < required {
			return nil, &ArityError{
				Name:         name,
				ArgumentHelp: argumentHelp,
				Required:     required,
				Supplied:     len(tokens) - 1,
			}
		}

		commands[i] = cmd
		kinds[i] = kind
	}

	p := &Pipeline{
		CommandLine: line,
		handler:     h,
		done:        make(chan struct{}),
	}
	if kinds[0].IsAsync() {
		p.PID = int(h.pids.Add(1))
	}

	p.contexts = make([]*Context, len(stages))
	for i, tokens := range stages {
		p.contexts[i] = &Context{
			Err:      errOut,
			args:     tokens,
			pid:      p.PID,
			index:    i,
			command:  commands[i],
			kind:     kinds[i],
			pipeline: p,
			symbols:  h.symbols,
		}
	}

	for i := 0; i < len(stages)-1; i++ {
		next := p.contexts[i+1]
		consumer, _ := next.command.(LineConsumer)
		forward := newLineWriter(consumer, next)
		p.contexts[i].forward = forward
		p.contexts[i].Out = forward
	}
	p.contexts[len(stages)-1].Out = out

	return p, nil
}

// ExecuteLine parses, builds and runs a command line. Errors are written to
// errOut and reflected in the returned status.
func (h *Handler) ExecuteLine(line string, out, errOut io.Writer) int {
	stages, err := Parse(line)
	if err != nil {
		fmt.Fprintln(errOut, "Error: failed to parse command:", err)
		h.events.InvalidInvocation(line, err)
		return StatusInvalid
	}
	if len(stages) == 0 {
		return StatusOK
	}

	h.events.RunCommand(line, stages)

	p, err := h.Build(line, stages, out, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)

		var unknown *UnknownCommandError
		var arity *ArityError
		switch {
		case errors.As(err, &unknown):
			h.events.UnknownCommand(line, unknown.Name)
		case errors.As(err, &arity):
			fmt.Fprintln(errOut, arity.Usage())
			h.events.InvalidInvocation(line, err)
		default:
			h.events.InvalidInvocation(line, err)
		}

		h.logger.Debug("rejected command line", zap.String("command_line", line), zap.Error(err))
		return StatusInvalid
	}

	return p.Execute()
}

// Kill terminates the job with the given pid.
func (h *Handler) Kill(pid int) error {
	p, ok := h.jobs.Get(pid)
	if !ok {
		return fmt.Errorf("kill %d: %w", pid, ErrJobNotFound)
	}
	p.terminate()
	return nil
}

// Close kills every running job.
func (h *Handler) Close() error {
	for _, job := range h.jobs.List() {
		// The job may have finished on its own in the meantime.
		_ = h.Kill(job.PID)
	}
	return nil
}
