package commands

import (
	"fmt"
	"regexp"

	"github.com/josephlewis42/simshell/core/shell"
)

// grep prints the input lines matching a pattern.
type grep struct {
	ctx    *shell.Context
	regex  *regexp.Regexp
	invert bool
}

func (g *grep) Execute(ctx *shell.Context) int {
	cmd := &SimpleCommand{
		Use:   "grep [-iv] PATTERN",
		Short: "Print the lines of the input matching a pattern.",
	}

	invert := cmd.Flags().Bool('v', "Select lines not matching the pattern.")
	ignoreCase := cmd.Flags().Bool('i', "Perform pattern matching in searches without regard to case.")

	return cmd.Run(ctx, func() int {
		args := cmd.Args()
		if len(args) != 1 {
			fmt.Fprintln(ctx.Err, "grep: expected exactly one PATTERN")
			return 1
		}

		pattern := args[0]
		if *ignoreCase {
			pattern = "(?i)" + pattern
		}
		regex, err := regexp.Compile(pattern)
		if err != nil {
			fmt.Fprintf(ctx.Err, "grep: %s\n", err)
			return 2
		}

		g.ctx = ctx
		g.regex = regex
		g.invert = *invert
		return 0
	})
}

func (g *grep) ConsumeLine(line string) {
	if g.regex == nil {
		return
	}
	if g.regex.MatchString(line) != g.invert {
		fmt.Fprintln(g.ctx.Out, line)
	}
}

func (g *grep) EndOfLines() {}

var _ shell.LineConsumer = (*grep)(nil)

// Grep filters lines with a regular expression.
func Grep(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "[-i] [-v] <regexp>",
		Help:         "print lines matching the specified pattern",
		New: func() shell.Command {
			return &grep{}
		},
	}
}

func init() {
	addCmd("grep", Grep)
}
