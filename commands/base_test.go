package commands

import (
	"path/filepath"
	"testing"

	"github.com/josephlewis42/simshell/core/shell"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllCommands(t *testing.T) {
	c := newConsole(t)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			def := AllCommands[name](c.env)
			if def.New == nil || def.New() == nil {
				t.Fatal("nil command", name)
			}
			assert.NotEmpty(t, def.Help)

			_, ok := c.h.Registry().Kind(name)
			assert.True(t, ok)
		})
	}
}

func TestCommandKinds(t *testing.T) {
	c := newConsole(t)

	cases := map[string]shell.Kind{
		"echo":      shell.KindBasic,
		"grep":      shell.KindLineConsumer,
		"timestamp": shell.KindLineConsumer,
		"trig":      shell.KindLineConsumer,
		">":         shell.KindAsyncLineConsumer,
		">>":        shell.KindAsyncLineConsumer,
		"tee":       shell.KindAsyncLineConsumer,
		"window":    shell.KindAsyncLineConsumer,
		"repeat":    shell.KindAsync,
		"exec":      shell.KindAsyncLineConsumer,
		"source":    shell.KindBasic,
		"fclose":    shell.KindBasic,
		"files":     shell.KindBasic,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			kind, ok := c.h.Registry().Kind(name)
			require.True(t, ok)
			assert.Equal(t, want, kind)
		})
	}
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Lines []string
}

func (gts goldenTestSuite) Run(t *testing.T) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			c := newConsole(t)

			var combined string
			for _, line := range tc.Lines {
				out, errOut, _ := c.run(t, line)
				combined += out + errOut
			}

			g.Assert(t, tn, []byte(combined))
		})
	}
}

func TestGolden(t *testing.T) {
	cases := goldenTestSuite{
		"echo":        {[]string{"echo hello   world"}},
		"echo-escape": {[]string{`echo -e "a\tb"`, "echo -n no newline"}},
		"grep":        {[]string{`echo -e "one\ntwo\nthree" | grep -v two`}},
		"grep-icase":  {[]string{`echo -e "Radio on\nradio off\nLED" | grep -i RADIO`}},
		"timestamp":   {[]string{`echo -e "boot\nready" | timestamp`}},
		"trig":        {[]string{`echo -e "a\nb" | trig echo fired`}},
		"symbol":      {[]string{"symbol ^(main|process)"}},
		"files":       {[]string{"files", "fclose nothing"}},
		"help-grep":   {[]string{"help grep"}},
		"pipe-error":  {[]string{"echo hi | echo there"}},
	}

	cases.Run(t)
}
