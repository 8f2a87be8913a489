package commands

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/josephlewis42/simshell/core/shell"
)

// parseDelay accepts seconds ("2", "0.5") or a Go duration ("250ms").
func parseDelay(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// repeat runs a command line periodically on its own goroutine until it's
// stopped or ran count times.
type repeat struct {
	commandLine string
	quit        chan struct{}
	stopOnce    sync.Once
}

func (r *repeat) Execute(ctx *shell.Context) int {
	cmd := &SimpleCommand{
		Use:   "repeat [-t DELAY] [-c COUNT] COMMAND_LINE",
		Short: "Run a command line every DELAY seconds.",
	}
	delayFlag := cmd.Flags().String('t', "1", "seconds between runs", "DELAY")
	count := cmd.Flags().Int('c', 0, "stop after COUNT runs, 0 repeats until killed", "COUNT")

	if status, ok := cmd.Parse(ctx); !ok {
		ctx.Exit(status)
		return status
	}

	delay, err := parseDelay(*delayFlag)
	if err != nil || delay <= 0 {
		fmt.Fprintf(ctx.Err, "repeat: invalid delay %q\n", *delayFlag)
		return 1
	}
	if *count < 0 {
		fmt.Fprintf(ctx.Err, "repeat: invalid count %d\n", *count)
		return 1
	}
	if len(cmd.Args()) == 0 {
		fmt.Fprintln(ctx.Err, "repeat: missing COMMAND_LINE")
		return 1
	}

	r.commandLine = strings.Join(cmd.Args(), " ")
	r.quit = make(chan struct{})
	go r.run(ctx, delay, *count)
	return 0
}

func (r *repeat) run(ctx *shell.Context, delay time.Duration, maxCount int) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for runs := 0; ; {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
		}

		runs++
		ctx.ExecuteCommand(r.commandLine)
		if maxCount > 0 && runs >= maxCount {
			fmt.Fprintf(ctx.Err, "[repeat exit: %s]\n", r.commandLine)
			ctx.Exit(0)
			return
		}
	}
}

// Stop ends the goroutine without waiting for it.
func (r *repeat) Stop(ctx *shell.Context) {
	if r.quit == nil {
		return
	}
	r.stopOnce.Do(func() {
		close(r.quit)
	})
}

var _ shell.Async = (*repeat)(nil)

// Repeat reruns a command line in the background.
func Repeat(env *Environment) shell.Definition {
	return shell.Definition{
		ArgumentHelp: "[-t delay] [-c count] <command line>",
		Help:         "repeat the specified command line",
		New: func() shell.Command {
			return &repeat{}
		},
	}
}

func init() {
	addCmd("repeat", Repeat)
}
