package shell

import (
	"fmt"
	"strings"
)

func (h *Handler) registerBuiltins() {
	h.Register("help", Func("[command]", "show help for the specified command or command list", h.help))
	h.Register("ps", Func("", "list current executing commands", h.ps))
	h.Register("kill", Func("<process>", "kill a currently executing command", h.kill))
}

// summary returns the first line of a command's help.
func summary(help string) string {
	if idx := strings.IndexByte(help, '\n'); idx > 0 {
		return help[:idx]
	}
	return help
}

func (h *Handler) help(ctx *Context) int {
	if ctx.ArgumentCount() == 0 {
		fmt.Fprintln(ctx.Out, "Available commands:")
		for _, name := range h.registry.Names() {
			argumentHelp, commandHelp, ok := h.registry.Help(name)
			if !ok || commandHelp == "" {
				continue
			}

			prefix := " " + name
			if argumentHelp != "" {
				prefix += " " + argumentHelp
			}

			var sb strings.Builder
			sb.WriteString(prefix)
			if len(prefix) < 8 {
				sb.WriteByte('\t')
			}
			if len(prefix) < 16 {
				sb.WriteByte('\t')
			}
			sb.WriteString("\t ")
			sb.WriteString(summary(commandHelp))
			fmt.Fprintln(ctx.Out, sb.String())
		}
		return 0
	}

	name := ctx.Argument(0)
	argumentHelp, commandHelp, ok := h.registry.Help(name)
	if !ok {
		fmt.Fprintf(ctx.Err, "Error: unknown command '%s'\n", name)
		return 1
	}

	if argumentHelp != "" {
		fmt.Fprintf(ctx.Out, "%s %s\n", name, argumentHelp)
	} else {
		fmt.Fprintln(ctx.Out, name)
	}
	if commandHelp != "" {
		fmt.Fprintf(ctx.Out, "  %s\n", commandHelp)
	}
	return 0
}

func (h *Handler) ps(ctx *Context) int {
	for _, job := range h.jobs.List() {
		fmt.Fprintf(ctx.Out, "  %d\t%s\n", job.PID, job.CommandLine)
	}
	return 0
}

func (h *Handler) kill(ctx *Context) int {
	pid := ctx.ArgumentAsInt(0)
	if err := h.Kill(pid); err != nil {
		fmt.Fprintln(ctx.Err, "could not find the command to kill.")
		return 1
	}
	return 0
}
