package commands

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	c := newConsole(t)
	require.NoError(t, afero.WriteFile(c.scriptFs, "boot.sc", []byte("# setup\necho one\n\necho two\n"), 0644))
	require.NoError(t, afero.WriteFile(c.scriptFs, "broken.sc", []byte("echo before\nnope\necho after\n"), 0644))

	cases := map[string]struct {
		line   string
		out    string
		errOut string
		ok     bool
	}{
		"plain": {
			line: "source boot.sc",
			out:  "one\ntwo\n",
			ok:   true,
		},
		"verbose": {
			line: "source -v boot.sc",
			out:  "> echo one\none\n> echo two\ntwo\n",
			ok:   true,
		},
		"piped": {
			line: "source boot.sc | grep two",
			out:  "two\n",
			ok:   true,
		},
		"missing": {
			line:   "source nope.sc",
			errOut: "could not find the script file 'nope.sc'.\n",
		},
		"stops at failure": {
			line:   "source broken.sc",
			out:    "before\n",
			errOut: `CLI: Command not found: "nope". Try "help".`,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			out, errOut, status := c.run(t, tc.line)
			assert.Equal(t, tc.out, out)
			assert.Contains(t, errOut, tc.errOut)
			assert.Equal(t, tc.ok, status == 0)
		})
	}
}

func TestSysinfo(t *testing.T) {
	c := newConsole(t)

	out, _, status := c.run(t, "sysinfo")
	require.Equal(t, 0, status)
	assert.Contains(t, out, "simshell version: "+Version)
	assert.Contains(t, out, "Symbols         : 3")
	assert.NotContains(t, out, "Registry info")

	out, _, _ = c.run(t, "sysinfo -registry")
	assert.Contains(t, out, "Registry info")
	assert.Contains(t, out, fmt.Sprintf("%-12s %s\n", "repeat", "async"))
}

func TestSymbol_BadPattern(t *testing.T) {
	c := newConsole(t)

	_, errOut, status := c.run(t, "symbol (")
	assert.NotEqual(t, 0, status)
	assert.Contains(t, errOut, "symbol: ")
}
