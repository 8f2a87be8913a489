package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/josephlewis42/simshell/core/shell"
	"github.com/josephlewis42/simshell/core/sink"
	"github.com/josephlewis42/simshell/core/symbols"
	getopt "github.com/pborman/getopt/v2"
	"github.com/spf13/afero"
)

// Version is reported by sysinfo.
const Version = "0.4.0"

// CommandFactory creates the definition of a command bound to an
// environment.
type CommandFactory func(env *Environment) shell.Definition

// AllCommands holds a list of all registered commands.
var AllCommands = make(map[string]CommandFactory)

func addCmd(name string, factory CommandFactory) {
	AllCommands[name] = factory
}

// Names returns the names of all commands sorted.
func Names() []string {
	var out []string
	for name := range AllCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Environment is the state shared by the commands of one console.
type Environment struct {
	// Files holds the open file redirections.
	Files *shell.TargetRegistry
	// Windows holds the open windows.
	Windows *shell.TargetRegistry
	// ScriptFs is where source reads scripts from.
	ScriptFs afero.Fs
	// Symbols resolves symbolic names, it may be empty.
	Symbols *symbols.Table
	// Handler runs nested command lines and reports on the registry.
	Handler *shell.Handler
	// Now is the clock used by timestamp.
	Now func() time.Time
	// AllowExec enables starting host programs.
	AllowExec bool
}

// EnvironmentOption configures an Environment.
type EnvironmentOption func(*envConfig)

type envConfig struct {
	outputFs  afero.Fs
	scriptFs  afero.Fs
	windowOut io.Writer
	color     bool
	symbols   *symbols.Table
	now       func() time.Time
	exec      bool
}

// WithOutputFs sets the filesystem that file redirections write to.
func WithOutputFs(fs afero.Fs) EnvironmentOption {
	return func(c *envConfig) {
		c.outputFs = fs
	}
}

// WithScriptFs sets the filesystem scripts are read from.
func WithScriptFs(fs afero.Fs) EnvironmentOption {
	return func(c *envConfig) {
		c.scriptFs = fs
	}
}

// WithWindowOutput echoes window contents to w, colorizing titles if color
// is set.
func WithWindowOutput(w io.Writer, color bool) EnvironmentOption {
	return func(c *envConfig) {
		c.windowOut = w
		c.color = color
	}
}

// WithSymbolTable sets the symbol table listed by the symbol command.
func WithSymbolTable(t *symbols.Table) EnvironmentOption {
	return func(c *envConfig) {
		c.symbols = t
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) EnvironmentOption {
	return func(c *envConfig) {
		c.now = now
	}
}

// WithExec allows exec to start host programs.
func WithExec(allow bool) EnvironmentOption {
	return func(c *envConfig) {
		c.exec = allow
	}
}

// Install registers every command in h and returns the environment they
// share.
func Install(h *shell.Handler, opts ...EnvironmentOption) (*Environment, error) {
	cfg := envConfig{
		outputFs: afero.NewMemMapFs(),
		scriptFs: afero.NewOsFs(),
		symbols:  &symbols.Table{},
		now:      time.Now,
		color:    !color.NoColor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := &Environment{
		ScriptFs: cfg.scriptFs,
		Symbols:  cfg.symbols,
		Handler:  h,
		Now:      cfg.now,

		AllowExec: cfg.exec,
	}
	env.Files = shell.NewTargetRegistry(func(name string, append bool) (shell.LineSink, error) {
		return sink.OpenFile(cfg.outputFs, name, append)
	})
	env.Windows = shell.NewTargetRegistry(func(name string, _ bool) (shell.LineSink, error) {
		windowOpts := []sink.WindowOption{sink.WithColor(cfg.color)}
		if cfg.windowOut != nil {
			windowOpts = append(windowOpts, sink.WithOutput(cfg.windowOut))
		}
		return sink.NewWindow(name, windowOpts...), nil
	})

	for _, name := range Names() {
		if err := h.Register(name, AllCommands[name](env)); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Close force closes every open file and window.
func (env *Environment) Close() error {
	for _, registry := range []*shell.TargetRegistry{env.Files, env.Windows} {
		for _, t := range registry.List() {
			t.ForceClose()
		}
	}
	return nil
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Parse parses the options of the invocation. If it returns false the
// command must return status.
func (s *SimpleCommand) Parse(ctx *shell.Context) (status int, ok bool) {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(ctx.Args(), nil); err != nil {
		fmt.Fprintf(ctx.Err, "error: %s\n\n", err)
		s.PrintHelp(ctx.Err)
		return 1, false
	}

	if *s.ShowHelp {
		s.PrintHelp(ctx.Out)
		return 0, false
	}

	return 0, true
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(ctx *shell.Context, callback func() int) int {
	if status, ok := s.Parse(ctx); !ok {
		return status
	}
	return callback()
}

// Args returns the arguments left after option parsing.
func (s *SimpleCommand) Args() []string {
	return s.Flags().Args()
}
