package core

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/josephlewis42/simshell/commands"
	"github.com/josephlewis42/simshell/core/config"
	"github.com/josephlewis42/simshell/core/logger"
	"github.com/josephlewis42/simshell/core/shell"
	"github.com/josephlewis42/simshell/core/symbols"
	"go.uber.org/zap"
)

// Console is a command handler with every command installed, bound to one
// operator.
type Console struct {
	*shell.Handler
	Env *commands.Environment

	prompt string
}

// ConsoleOptions holds the per-console settings.
type ConsoleOptions struct {
	// Events receives the console's events, it may be nil.
	Events *logger.Recorder
	// Logger receives diagnostics, it may be nil.
	Logger *zap.Logger
	// Symbols resolves symbolic addresses, it may be nil.
	Symbols *symbols.Table
	// WindowOutput receives the contents of windows.
	WindowOutput io.Writer
	// IsTerminal reports whether WindowOutput is a terminal.
	IsTerminal bool
}

// LoadSymbols reads the configured symbol file. The table is empty if none
// is configured.
func LoadSymbols(configuration *config.Configuration) (*symbols.Table, error) {
	table := &symbols.Table{}

	fd, err := configuration.OpenSymbolFile()
	if err != nil {
		return nil, fmt.Errorf("opening symbol file: %w", err)
	}
	if fd == nil {
		return table, nil
	}
	defer fd.Close()

	if err := table.Load(fd); err != nil {
		return nil, fmt.Errorf("loading %s: %w", configuration.SymbolFile, err)
	}
	return table, nil
}

// ShouldColor decides whether window titles are colorized.
func ShouldColor(mode string, isTerminal bool) bool {
	switch mode {
	case config.ColorNever:
		return false
	case config.ColorAlways:
		return true
	default:
		return isTerminal && !color.NoColor
	}
}

// NewConsole creates a console using the configuration's scripts, output
// directory and symbols.
func NewConsole(configuration *config.Configuration, opts ConsoleOptions) (*Console, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Symbols == nil {
		opts.Symbols = &symbols.Table{}
	}

	handler := shell.NewHandler(
		shell.WithLogger(opts.Logger),
		shell.WithRecorder(opts.Events),
		shell.WithSymbols(opts.Symbols),
		shell.WithScripts(configuration.Fs(), configuration.ScriptDir),
	)

	env, err := commands.Install(handler,
		commands.WithOutputFs(configuration.OutputFs()),
		commands.WithScriptFs(configuration.Fs()),
		commands.WithSymbolTable(opts.Symbols),
		commands.WithWindowOutput(opts.WindowOutput, ShouldColor(configuration.Color, opts.IsTerminal)),
		commands.WithExec(configuration.AllowExec),
	)
	if err != nil {
		return nil, err
	}

	return &Console{
		Handler: handler,
		Env:     env,
		prompt:  configuration.Prompt,
	}, nil
}

// Prompt returns the configured prompt.
func (c *Console) Prompt() string {
	return c.prompt
}

// Close kills every job and closes every open file and window.
func (c *Console) Close() error {
	c.Handler.Close()
	return c.Env.Close()
}
