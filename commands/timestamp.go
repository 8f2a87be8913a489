package commands

import (
	"fmt"
	"time"

	"github.com/josephlewis42/simshell/core/shell"
)

type timestamp struct {
	ctx   *shell.Context
	now   func() time.Time
	start time.Time
}

func (ts *timestamp) Execute(ctx *shell.Context) int {
	ts.ctx = ctx
	ts.start = ts.now()
	return 0
}

func (ts *timestamp) ConsumeLine(line string) {
	fmt.Fprintf(ts.ctx.Out, "%d %s\n", ts.now().Sub(ts.start).Milliseconds(), line)
}

func (ts *timestamp) EndOfLines() {}

// Timestamp prefixes lines with the milliseconds since the pipeline started.
func Timestamp(env *Environment) shell.Definition {
	return shell.Definition{
		Help: "print lines with timestamp prefixed",
		New: func() shell.Command {
			return &timestamp{now: env.Now}
		},
	}
}

func init() {
	addCmd("timestamp", Timestamp)
}
