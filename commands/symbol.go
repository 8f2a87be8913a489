package commands

import (
	"fmt"
	"regexp"

	"github.com/josephlewis42/simshell/core/shell"
)

// Symbol lists the symbols matching a pattern.
func Symbol(env *Environment) shell.Definition {
	return shell.Func("<regexp>", "list matching symbols", func(ctx *shell.Context) int {
		re, err := regexp.Compile(ctx.Argument(0))
		if err != nil {
			fmt.Fprintf(ctx.Err, "symbol: %s\n", err)
			return 1
		}

		for _, sym := range env.Symbols.Match(re) {
			fmt.Fprintf(ctx.Out, " %s at $%04x (%d)\n", sym.Name, sym.Address, sym.Address)
		}
		return 0
	})
}

func init() {
	addCmd("symbol", Symbol)
}
