package commands

import (
	"fmt"

	"github.com/josephlewis42/simshell/core/shell"
)

// fileTarget writes its input into a shared file.
type fileTarget struct {
	files *shell.TargetRegistry
	// print also copies lines to the output.
	print  bool
	append bool
	// options enables -a parsing.
	options bool

	ctx    *shell.Context
	target *shell.Target
}

func (f *fileTarget) Execute(ctx *shell.Context) int {
	f.ctx = ctx
	name := ctx.Argument(0)

	if f.options {
		cmd := &SimpleCommand{
			Use:   "tee [-a] FILE",
			Short: "Copy the input to a file and the output.",
		}
		appendFlag := cmd.Flags().Bool('a', "append to the file and share it with other writers")
		if status, ok := cmd.Parse(ctx); !ok {
			ctx.Exit(status)
			return status
		}
		if len(cmd.Args()) != 1 {
			fmt.Fprintln(ctx.Err, "tee: expected exactly one FILE")
			return 1
		}
		name = cmd.Args()[0]
		f.append = *appendFlag
	}

	target, err := f.files.Open(name, f.append)
	if err != nil {
		fmt.Fprintln(ctx.Err, err)
		return 1
	}
	f.target = target
	target.Attach(ctx)
	return 0
}

func (f *fileTarget) ConsumeLine(line string) {
	if f.target == nil {
		return
	}
	f.target.WriteLine(f.ctx, line)
	if f.print {
		fmt.Fprintln(f.ctx.Out, line)
	}
}

func (f *fileTarget) EndOfLines() {
	if f.target != nil {
		f.target.Detach(f.ctx)
	}
	f.ctx.Exit(0)
}

func (f *fileTarget) Stop(ctx *shell.Context) {
	if f.target != nil {
		f.target.Detach(ctx)
	}
}

var _ shell.Async = (*fileTarget)(nil)
var _ shell.LineConsumer = (*fileTarget)(nil)

// Redirect writes its input into a file, refusing to overwrite a file
// another pipeline is writing.
func Redirect(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "<filename>",
		Help:         "redirect to file",
		New: func() shell.Command {
			return &fileTarget{files: env.Files}
		},
	}
}

// RedirectAppend writes its input to the end of a file, sharing it with
// other appending pipelines.
func RedirectAppend(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "<filename>",
		Help:         "redirect to the end of a file",
		New: func() shell.Command {
			return &fileTarget{files: env.Files, append: true}
		},
	}
}

// Tee copies its input to a file and its output.
func Tee(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "[-a] <filename>",
		Help:         "redirect to file and std-out",
		New: func() shell.Command {
			return &fileTarget{files: env.Files, print: true, options: true}
		},
	}
}

// Fclose force closes an open file, ending the pipelines writing to it.
func Fclose(env *Environment) shell.Definition {
	return shell.Func("<filename>", "close the specified file", func(ctx *shell.Context) int {
		name := ctx.Argument(0)
		target, ok := env.Files.Get(name)
		if !ok {
			fmt.Fprintln(ctx.Err, "Could not find the open file", name)
			return 1
		}

		fmt.Fprintln(ctx.Out, "Closing file", name)
		target.ForceClose()
		return 0
	})
}

// Files lists the open files and the pids writing to them.
func Files(env *Environment) shell.Definition {
	return shell.Func("", "list open files", func(ctx *shell.Context) int {
		for _, target := range env.Files.List() {
			fmt.Fprintln(ctx.Out, target.Status())
		}
		return 0
	})
}

func init() {
	addCmd(">", Redirect)
	addCmd(">>", RedirectAppend)
	addCmd("tee", Tee)
	addCmd("fclose", Fclose)
	addCmd("files", Files)
}
