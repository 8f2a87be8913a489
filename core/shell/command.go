package shell

import "fmt"

// Command is a single invocation of a shell command. Every invocation gets
// its own Command from the Definition's factory so per-run state is never
// shared.
type Command interface {
	// Execute runs the command and returns its status, 0 for success.
	Execute(ctx *Context) int
}

// Async is a command whose effect continues after Execute returns, e.g. a
// breakpoint or a repeater. Pipelines headed by an Async command become jobs.
type Async interface {
	Command

	// Stop asks the command to stop producing output and release its
	// resources. It may be called even if Execute didn't complete normally.
	Stop(ctx *Context)
}

// LineConsumer is a command that accepts lines from an upstream stage.
type LineConsumer interface {
	Command

	// ConsumeLine receives a single line without its trailing newline.
	ConsumeLine(line string)

	// EndOfLines is called once after the upstream stage exited.
	EndOfLines()
}

// Kind is the capability set of a command, resolved once at registration.
type Kind int

const (
	KindBasic Kind = iota
	KindAsync
	KindLineConsumer
	KindAsyncLineConsumer
)

// IsAsync returns true if commands of this kind implement Async.
func (k Kind) IsAsync() bool {
	return k == KindAsync || k == KindAsyncLineConsumer
}

// ConsumesLines returns true if commands of this kind implement LineConsumer.
func (k Kind) ConsumesLines() bool {
	return k == KindLineConsumer || k == KindAsyncLineConsumer
}

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindAsync:
		return "async"
	case KindLineConsumer:
		return "line"
	case KindAsyncLineConsumer:
		return "async-line"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf determines the capability set of a command.
func KindOf(cmd Command) Kind {
	_, async := cmd.(Async)
	_, lines := cmd.(LineConsumer)

	switch {
	case async && lines:
		return KindAsyncLineConsumer
	case async:
		return KindAsync
	case lines:
		return KindLineConsumer
	default:
		return KindBasic
	}
}

// Definition describes a registered command.
type Definition struct {
	// ArgumentHelp describes the arguments, required ones are surrounded by
	// '<' and '>' and optional ones by '[' and ']'.
	ArgumentHelp string
	// Help describes the command, the first line is used as a summary.
	Help string
	// New creates a fresh command for a single invocation.
	New func() Command
}

// CommandFunc adapts a function to a basic Command.
type CommandFunc func(ctx *Context) int

// Execute implements Command.Execute.
func (f CommandFunc) Execute(ctx *Context) int {
	return f(ctx)
}

var _ Command = (CommandFunc)(nil)

// Func creates a Definition for a stateless basic command.
func Func(argumentHelp, help string, fn func(ctx *Context) int) Definition {
	return Definition{
		ArgumentHelp: argumentHelp,
		Help:         help,
		New: func() Command {
			return CommandFunc(fn)
		},
	}
}
