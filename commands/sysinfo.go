package commands

import (
	"fmt"
	"runtime"

	"github.com/josephlewis42/simshell/core/shell"
)

// Sysinfo describes the running shell.
func Sysinfo(env *Environment) shell.Definition {
	return shell.Func("[-registry]", "show info about the system", func(ctx *shell.Context) int {
		registry := env.Handler.Registry()
		names := registry.Names()

		fmt.Fprintln(ctx.Out, "--------- System info ----------")
		fmt.Fprintln(ctx.Out)
		fmt.Fprintf(ctx.Out, "simshell version: %s\n", Version)
		fmt.Fprintf(ctx.Out, "Go version      : %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(ctx.Out, "Commands        : %d\n", len(names))
		fmt.Fprintf(ctx.Out, "Symbols         : %d\n", env.Symbols.Len())
		fmt.Fprintf(ctx.Out, "Jobs            : %d\n", env.Handler.Jobs().Len())
		fmt.Fprintln(ctx.Out)

		if ctx.HasOption("registry") {
			fmt.Fprintln(ctx.Out, "--------- Registry info --------")
			fmt.Fprintln(ctx.Out)
			for _, name := range names {
				kind, _ := registry.Kind(name)
				fmt.Fprintf(ctx.Out, "%-12s %s\n", name, kind)
			}
		}
		return 0
	})
}

func init() {
	addCmd("sysinfo", Sysinfo)
}
