package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWindow(t *testing.T) {
	c := newConsole(t)

	_, errOut, status := c.run(t, `echo -e "#!title Radio\nhello" | window radio`)
	require.Equal(t, 0, status)
	assert.Empty(t, errOut)
	assert.Equal(t, "[Radio] hello\n", c.windowOut.String())

	// The window closed with its last writer.
	out, _, _ := c.run(t, "window -list")
	assert.Empty(t, out)
}

func TestWindow_Job(t *testing.T) {
	c := newConsole(t)

	_, _, status := c.run(t, "repeat -t 1h echo tick | window w")
	require.Equal(t, 0, status)
	require.Equal(t, 1, c.h.Jobs().Len())

	out, _, status := c.run(t, "window -list")
	assert.Equal(t, 0, status)
	assert.Equal(t, "Window Name   PIDs\nw \tPIDs: [1]\n", out)

	_, _, status = c.run(t, "window -clear w")
	assert.Equal(t, 0, status)

	// One shot invocations never become jobs.
	assert.Equal(t, 1, c.h.Jobs().Len())

	out, _, status = c.run(t, "window -close w")
	assert.Equal(t, 0, status)
	assert.Equal(t, "Closing window w\n", out)
	assert.Equal(t, 0, c.h.Jobs().Len())

	_, errOut, status := c.run(t, "window -close w")
	assert.NotEqual(t, 0, status)
	assert.Contains(t, errOut, "Could not find the window w")

	_, errOut, status = c.run(t, "window -bogus w")
	assert.NotEqual(t, 0, status)
	assert.Contains(t, errOut, `window: unknown option "-bogus"`)

	goleak.VerifyNone(t)
}

func TestWindow_BadControl(t *testing.T) {
	c := newConsole(t)

	_, errOut, status := c.run(t, `echo "#!bounds 1 2" | window w`)
	assert.Equal(t, 0, status)
	assert.Contains(t, errOut, "write w: could not set bounds")
}
