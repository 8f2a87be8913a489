package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParseDelay(t *testing.T) {
	cases := map[string]time.Duration{
		"2":     2 * time.Second,
		"0.5":   500 * time.Millisecond,
		"250ms": 250 * time.Millisecond,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := parseDelay(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := parseDelay("soon")
	assert.Error(t, err)
}

func TestRepeat_Count(t *testing.T) {
	c := newConsole(t)

	var out, errOut syncBuffer
	status := c.h.ExecuteLine("repeat -t 5ms -c 3 echo tick", &out, &errOut)
	require.Equal(t, 0, status)

	assert.Eventually(t, func() bool {
		return c.h.Jobs().Len() == 0
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal(t, "tick\ntick\ntick\n", out.String())
	assert.Equal(t, "[repeat exit: echo tick]\n", errOut.String())
	goleak.VerifyNone(t)
}

func TestRepeat_Kill(t *testing.T) {
	c := newConsole(t)

	var out, errOut syncBuffer
	status := c.h.ExecuteLine("repeat -t 5ms echo tick", &out, &errOut)
	require.Equal(t, 0, status)

	ps, _, _ := c.run(t, "ps")
	assert.Equal(t, "  1\trepeat -t 5ms echo tick\n", ps)

	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "tick") >= 2
	}, 5*time.Second, 5*time.Millisecond)

	_, _, status = c.run(t, "kill 1")
	assert.Equal(t, 0, status)
	assert.Equal(t, 0, c.h.Jobs().Len())
	goleak.VerifyNone(t)
}

func TestRepeat_Errors(t *testing.T) {
	c := newConsole(t)

	cases := map[string]struct {
		line   string
		errOut string
	}{
		"zero delay":     {"repeat -t 0 echo", `repeat: invalid delay "0"`},
		"bad delay":      {"repeat -t soon echo", `repeat: invalid delay "soon"`},
		"unknown option": {"repeat -x echo", "usage: repeat"},
		"missing line":   {"repeat -t 1", "repeat: missing COMMAND_LINE"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			_, errOut, status := c.run(t, tc.line)
			assert.NotEqual(t, 0, status)
			assert.Contains(t, errOut, tc.errOut)
			assert.Equal(t, 0, c.h.Jobs().Len())
		})
	}
	goleak.VerifyNone(t)
}
