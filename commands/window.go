package commands

import (
	"fmt"

	"github.com/josephlewis42/simshell/core/shell"
	"github.com/josephlewis42/simshell/core/sink"
)

// window redirects its input into a named window.
type window struct {
	windows *shell.TargetRegistry

	ctx    *shell.Context
	target *shell.Target
}

func (w *window) Execute(ctx *shell.Context) int {
	w.ctx = ctx

	var clearWindow, closeWindow bool
	for i := 0; i < ctx.ArgumentCount(); i++ {
		switch name := ctx.Argument(i); {
		case name == "-close":
			closeWindow = true
		case name == "-clear":
			clearWindow = true
		case name == "-list":
			targets := w.windows.List()
			if len(targets) > 0 {
				fmt.Fprintln(ctx.Out, "Window Name   PIDs")
			}
			for _, t := range targets {
				fmt.Fprintln(ctx.Out, t.Status())
			}
			ctx.Exit(0)
			return 0
		case i < ctx.ArgumentCount()-1:
			fmt.Fprintf(ctx.Err, "window: unknown option %q\n", name)
			ctx.Exit(1)
			return 1
		}
	}

	name := ctx.Argument(ctx.ArgumentCount() - 1)
	if clearWindow || closeWindow {
		target, ok := w.windows.Get(name)
		if !ok {
			fmt.Fprintln(ctx.Err, "Could not find the window", name)
			ctx.Exit(1)
			return 1
		}

		if closeWindow {
			fmt.Fprintln(ctx.Out, "Closing window", name)
			target.ForceClose()
		} else {
			target.WriteLine(ctx, sink.ControlPrefix+"clear")
		}
		ctx.Exit(0)
		return 0
	}

	target, err := w.windows.Open(name, true)
	if err != nil {
		fmt.Fprintln(ctx.Err, err)
		return 1
	}
	w.target = target
	target.Attach(ctx)
	return 0
}

func (w *window) ConsumeLine(line string) {
	if w.target != nil {
		w.target.WriteLine(w.ctx, line)
	}
}

func (w *window) EndOfLines() {
	if w.target != nil {
		w.target.Detach(w.ctx)
	}
	w.ctx.Exit(0)
}

func (w *window) Stop(ctx *shell.Context) {
	if w.target != nil {
		w.target.Detach(ctx)
	}
}

var _ shell.Async = (*window)(nil)
var _ shell.LineConsumer = (*window)(nil)

// Window redirects lines into a window shared by every pipeline writing to
// the same name. A window closes once its last writer is gone.
func Window(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "[-close|-clear|-list] <windowname>",
		Help: `redirect input to a window
Lines starting with #! control the window:
  #!title <title>      set the title
  #!bounds x y w h     set the placement
  #!clear              drop the contents`,
		New: func() shell.Command {
			return &window{windows: env.Windows}
		},
	}
}

func init() {
	addCmd("window", Window)
}
