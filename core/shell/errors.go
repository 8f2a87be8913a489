package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when killing a pid that isn't in the job table.
	ErrJobNotFound = errors.New("job not found")
	// ErrNotInstantiable is returned when a command factory produces no command.
	ErrNotInstantiable = errors.New("command factory returned nil")
	// ErrTargetClosed is returned when writing to a target that was closed.
	ErrTargetClosed = errors.New("target closed")
)

// ParseError is returned for a malformed command line, nothing on the line
// is executed.
type ParseError struct {
	Line   string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at column %d", e.Reason, e.Offset+1)
}

// UnknownCommandError is returned when a stage name doesn't resolve.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("CLI: Command not found: %q. Try \"help\".", e.Name)
}

// PipingError is returned when a stage after the first can't consume lines.
type PipingError struct {
	Name string
}

func (e *PipingError) Error() string {
	return fmt.Sprintf("CLI: Error, command %q does not take input.", e.Name)
}

// ArityError is returned when a stage has fewer arguments than its argument
// help requires.
type ArityError struct {
	Name         string
	ArgumentHelp string
	Required     int
	Supplied     int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("Too few arguments for %s", e.Name)
}

// Usage returns the usage line for the command.
func (e *ArityError) Usage() string {
	return fmt.Sprintf("Usage: %s %s", e.Name, e.ArgumentHelp)
}

// FormatError is reported when an argument can't be read as a number or
// address. It never aborts the stage.
type FormatError struct {
	Argument string
	Hex      bool
	Err      error
}

func (e *FormatError) Error() string {
	if e.Hex {
		return fmt.Sprintf("Illegal hex number format: %s", e.Argument)
	}
	return fmt.Sprintf("Illegal number format: %s", e.Argument)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ExecutionError wraps a panic recovered from a stage's Execute.
type ExecutionError struct {
	Name  string
	Cause interface{}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("Error: Command failed: %s: %v", e.Name, e.Cause)
}

// AlreadyOpenError is returned when opening an existing target without
// append.
type AlreadyOpenError struct {
	Name string
}

func (e *AlreadyOpenError) Error() string {
	return fmt.Sprintf("%s is already open, cannot overwrite", e.Name)
}

// RedirectionError is reported when a sink can't be opened or written.
type RedirectionError struct {
	Name string
	Op   string
	Err  error
}

func (e *RedirectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *RedirectionError) Unwrap() error {
	return e.Err
}
