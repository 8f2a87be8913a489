package commands

import (
	"strings"

	"github.com/josephlewis42/simshell/core/shell"
)

// trig runs a command line for every input line.
type trig struct {
	ctx         *shell.Context
	commandLine string
}

func (t *trig) Execute(ctx *shell.Context) int {
	t.ctx = ctx
	t.commandLine = strings.Join(ctx.Args()[1:], " ")
	return 0
}

func (t *trig) ConsumeLine(string) {
	t.ctx.ExecuteCommand(t.commandLine)
}

func (t *trig) EndOfLines() {}

// Trig runs a command line each time a line arrives.
func Trig(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "<command>",
		Help:         "trigger command when getting input",
		New: func() shell.Command {
			return &trig{}
		},
	}
}

func init() {
	addCmd("trig", Trig)
}
