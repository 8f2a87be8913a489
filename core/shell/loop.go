package shell

import (
	"errors"
	"io"
	"strings"

	"github.com/abiosoft/readline"
	"go.uber.org/zap"
)

// repeatLastLine is what terminals without history support send for the up
// arrow.
const repeatLastLine = "\x1b[A"

// LoopConfig configures an interactive console.
type LoopConfig struct {
	Prompt      string
	HistoryFile string

	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal and Width describe the console, readline probes the
	// process's terminal if they're unset.
	IsTerminal func() bool
	Width      func() int
}

// Loop reads and executes command lines until the input ends or the operator
// types exit or quit.
func (h *Handler) Loop(cfg LoopConfig) error {
	rlCfg := &readline.Config{
		Prompt:         cfg.Prompt,
		HistoryFile:    cfg.HistoryFile,
		Stdout:         cfg.Stdout,
		Stderr:         cfg.Stderr,
		FuncIsTerminal: cfg.IsTerminal,
		FuncGetWidth:   cfg.Width,
	}
	if cfg.Stdin != nil {
		rlCfg.Stdin = readline.NewCancelableStdin(cfg.Stdin)
	}

	if err := rlCfg.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close()

	var lastLine string
	for {
		line, err := rl.Readline()

		switch {
		case errors.Is(err, io.EOF):
			return nil

		case errors.Is(err, readline.ErrInterrupt):
			continue

		case err != nil:
			h.logger.Warn("readline failed", zap.Error(err))
			return err
		}

		if line == repeatLastLine {
			line = lastLine
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lastLine = line

		switch trimmed {
		case "exit", "quit":
			return nil
		}

		h.ExecuteLine(line, rl.Stdout(), rl.Stderr())
	}
}
