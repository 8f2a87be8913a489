package shell

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ScriptExtension is appended to unknown command names when looking for a
// script to run instead.
const ScriptExtension = ".sc"

type registration struct {
	definition Definition
	kind       Kind
}

// Registry maps command names to their definitions.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]registration

	logger    *zap.Logger
	scriptFs  afero.Fs
	scriptDir string
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		commands: make(map[string]registration),
		logger:   logger,
	}
}

// SetScripts enables running <dir>/<name>.sc for names that aren't
// registered.
func (r *Registry) SetScripts(fs afero.Fs, dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scriptFs = fs
	r.scriptDir = dir
}

// Register binds name to the definition, replacing any previous binding.
// The factory is called once to determine the command's Kind; if it produces
// nothing the name is left unbound.
func (r *Registry) Register(name string, def Definition) error {
	var probe Command
	if def.New != nil {
		probe = def.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if probe == nil {
		delete(r.commands, name)
		r.logger.Error("command can't be registered", zap.String("command", name), zap.Error(ErrNotInstantiable))
		return fmt.Errorf("register %q: %w", name, ErrNotInstantiable)
	}

	kind := KindOf(probe)
	r.commands[name] = registration{definition: def, kind: kind}
	r.logger.Debug("registered command", zap.String("command", name), zap.Stringer("kind", kind))
	return nil
}

// Resolve creates a fresh command for name.
func (r *Registry) Resolve(name string) (Command, Kind, error) {
	r.mu.RLock()
	reg, ok := r.commands[name]
	scriptFs, scriptDir := r.scriptFs, r.scriptDir
	r.mu.RUnlock()

	if ok {
		cmd := reg.definition.New()
		if cmd == nil {
			return nil, KindBasic, fmt.Errorf("resolve %q: %w", name, ErrNotInstantiable)
		}
		return cmd, reg.kind, nil
	}

	if script, ok := findScript(scriptFs, scriptDir, name); ok {
		return script, KindBasic, nil
	}

	return nil, KindBasic, &UnknownCommandError{Name: name}
}

// Help returns the argument help and command help of a registered command.
func (r *Registry) Help(name string) (argumentHelp, commandHelp string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.commands[name]
	if !ok {
		return "", "", false
	}
	return reg.definition.ArgumentHelp, reg.definition.Help, true
}

// Kind returns the capability set of a registered command.
func (r *Registry) Kind(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.commands[name]
	return reg.kind, ok
}

// Names returns the sorted names of all registered commands.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for name := range r.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RequiredArguments counts the required arguments in an argument help
// string, each one is surrounded by '<' and '>'.
func RequiredArguments(argumentHelp string) int {
	return strings.Count(argumentHelp, "<")
}

func findScript(fs afero.Fs, dir, name string) (*scriptCommand, bool) {
	if fs == nil || name == "" || strings.ContainsAny(name, "/\\") {
		return nil, false
	}

	scriptPath := path.Join(dir, name+ScriptExtension)
	info, err := fs.Stat(scriptPath)
	if err != nil || info.IsDir() {
		return nil, false
	}

	return &scriptCommand{fs: fs, path: scriptPath}, true
}

// scriptCommand runs each line of a script file as a command line.
type scriptCommand struct {
	fs   afero.Fs
	path string
}

var _ Command = (*scriptCommand)(nil)

func (s *scriptCommand) Execute(ctx *Context) int {
	contents, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Error: could not read script %s: %v\n", s.path, err)
		return 1
	}
	return RunScript(ctx, bytes.NewReader(contents), false)
}

// RunScript executes every non-empty, non-comment line read from r. It stops
// at the first line that fails and returns its status.
func RunScript(ctx *Context, r io.Reader, verbose bool) int {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if verbose {
			fmt.Fprintf(ctx.Out, "> %s\n", line)
		}
		if status := ctx.ExecuteCommand(line); status != 0 {
			return status
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(ctx.Err, "Error: %v\n", err)
		return 1
	}
	return 0
}
