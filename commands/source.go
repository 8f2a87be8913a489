package commands

import (
	"fmt"

	"github.com/josephlewis42/simshell/core/shell"
)

// Source runs the command lines of a script file.
func Source(env *Environment) shell.Definition {
	return shell.Func("[-v] <filename>", "run script", func(ctx *shell.Context) int {
		cmd := &SimpleCommand{
			Use:   "source [-v] FILE",
			Short: "Run each line of FILE as a command line.",
		}
		verbose := cmd.Flags().Bool('v', "print each line before running it")

		return cmd.Run(ctx, func() int {
			args := cmd.Args()
			if len(args) != 1 {
				fmt.Fprintln(ctx.Err, "source: expected exactly one FILE")
				return 1
			}

			fd, err := env.ScriptFs.Open(args[0])
			if err != nil {
				fmt.Fprintf(ctx.Err, "could not find the script file '%s'.\n", args[0])
				return 1
			}
			defer fd.Close()

			return shell.RunScript(ctx, fd, *verbose)
		})
	})
}

func init() {
	addCmd("source", Source)
}
