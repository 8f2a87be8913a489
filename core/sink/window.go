package sink

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/fatih/color"
)

// ControlPrefix marks a line sent to a window as a control line.
const ControlPrefix = "#!"

// DefaultBacklog is the number of lines a window keeps.
const DefaultBacklog = 1000

// Bounds is the requested placement of a window.
type Bounds struct {
	X, Y, Width, Height int
}

// Window is a named text sink. Lines are kept in a bounded backlog and
// echoed to an output prefixed by the window title.
type Window struct {
	mu      sync.Mutex
	name    string
	title   string
	bounds  Bounds
	lines   []string
	backlog int
	out     io.Writer
	color   *color.Color
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithOutput echoes every line of the window to w.
func WithOutput(w io.Writer) WindowOption {
	return func(win *Window) {
		win.out = w
	}
}

// WithColor sets whether the title prefix is colorized.
func WithColor(enabled bool) WindowOption {
	return func(win *Window) {
		if enabled {
			win.color.EnableColor()
		} else {
			win.color.DisableColor()
		}
	}
}

// WithBacklog sets the number of lines the window keeps.
func WithBacklog(lines int) WindowOption {
	return func(win *Window) {
		win.backlog = lines
	}
}

// NewWindow creates a window titled with its name.
func NewWindow(name string, opts ...WindowOption) *Window {
	win := &Window{
		name:    name,
		title:   name,
		backlog: DefaultBacklog,
		color:   color.New(color.FgCyan, color.Bold),
	}
	if color.NoColor {
		win.color.DisableColor()
	}
	for _, opt := range opts {
		opt(win)
	}
	return win
}

// WriteLine appends a line or applies a control line.
func (w *Window) WriteLine(line string) error {
	if strings.HasPrefix(line, ControlPrefix) {
		return w.control(strings.TrimPrefix(line, ControlPrefix))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.lines = append(w.lines, line)
	if overflow := len(w.lines) - w.backlog; w.backlog > 0 && overflow > 0 {
		w.lines = append([]string(nil), w.lines[overflow:]...)
	}

	if w.out != nil {
		_, err := fmt.Fprintf(w.out, "%s %s\n", w.color.Sprintf("[%s]", w.title), line)
		return err
	}
	return nil
}

func (w *Window) control(line string) error {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return fmt.Errorf("window control %q: %w", line, err)
	}
	if len(tokens) == 0 {
		return nil
	}

	switch tokens[0] {
	case "title":
		if len(tokens) < 2 {
			return errors.New("window control: title needs a value")
		}
		w.mu.Lock()
		w.title = strings.Join(tokens[1:], " ")
		w.mu.Unlock()

	case "bounds":
		if len(tokens) != 5 {
			return fmt.Errorf("could not set bounds: %s", line)
		}
		var vals [4]int
		for i, tok := range tokens[1:] {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return fmt.Errorf("could not set bounds: %s", line)
			}
			vals[i] = v
		}
		w.mu.Lock()
		w.bounds = Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
		w.mu.Unlock()

	case "clear":
		w.Clear()

	default:
		// Unknown controls are for richer windows, e.g. chart types.
	}
	return nil
}

// Clear drops the backlog.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lines = nil
}

// Name returns the name the window was opened with.
func (w *Window) Name() string {
	return w.name
}

// Title returns the current title.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.title
}

// Bounds returns the last requested placement.
func (w *Window) Bounds() Bounds {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.bounds
}

// Lines returns a copy of the backlog.
func (w *Window) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.lines...)
}

func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lines = nil
	w.out = nil
	return nil
}
