package commands

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/josephlewis42/simshell/core/shell"
	"github.com/josephlewis42/simshell/core/symbols"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for use by background jobs.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const testSymbols = `
0000f000 T main
00001100 B counter
0000f0a0 t process_tick
`

// console is a handler with every command installed on in-memory
// filesystems.
type console struct {
	h         *shell.Handler
	env       *Environment
	outputFs  afero.Fs
	scriptFs  afero.Fs
	windowOut *syncBuffer
}

func newConsole(t *testing.T) *console {
	t.Helper()

	var table symbols.Table
	require.NoError(t, table.Load(strings.NewReader(testSymbols)))

	c := &console{
		h:         shell.NewHandler(shell.WithSymbols(&table)),
		outputFs:  afero.NewMemMapFs(),
		scriptFs:  afero.NewMemMapFs(),
		windowOut: &syncBuffer{},
	}

	epoch := time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC)
	var ticks int
	env, err := Install(c.h,
		WithOutputFs(c.outputFs),
		WithScriptFs(c.scriptFs),
		WithWindowOutput(c.windowOut, false),
		WithSymbolTable(&table),
		WithExec(true),
		WithClock(func() time.Time {
			// Every reading advances the clock by 5ms.
			now := epoch.Add(time.Duration(ticks) * 5 * time.Millisecond)
			ticks++
			return now
		}),
	)
	require.NoError(t, err)
	c.env = env

	t.Cleanup(func() {
		c.h.Close()
		c.env.Close()
	})
	return c
}

// run executes line and returns stdout, stderr and the status.
func (c *console) run(t *testing.T, line string) (string, string, int) {
	t.Helper()

	var out, errOut syncBuffer
	status := c.h.ExecuteLine(line, &out, &errOut)
	return out.String(), errOut.String(), status
}

func (c *console) file(t *testing.T, name string) string {
	t.Helper()

	contents, err := afero.ReadFile(c.outputFs, name)
	require.NoError(t, err)
	return string(contents)
}
