package symbols

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mapFile = `
# generated by msp430-nm
0000f000 T main
00001100 B counter
0x1102 loop_count
0000f0a0 t process_tick
`

func TestTable(t *testing.T) {
	var table Table
	require.NoError(t, table.Load(strings.NewReader(mapFile)))
	assert.Equal(t, 4, table.Len())

	cases := map[string]struct {
		addr int
		ok   bool
	}{
		"main":         {0xf000, true},
		"counter":      {0x1100, true},
		"loop_count":   {0x1102, true},
		"process_tick": {0xf0a0, true},
		"missing":      {0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			addr, ok := table.Lookup(name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.addr, addr)
		})
	}
}

func TestTable_Errors(t *testing.T) {
	cases := map[string]string{
		"too many fields": "f000 T main extra",
		"bad address":     "zzzz T main",
		"address only":    "f000",
	}
	for tn, input := range cases {
		t.Run(tn, func(t *testing.T) {
			var table Table
			assert.Error(t, table.Load(strings.NewReader(input)))
			assert.Equal(t, 0, table.Len())
		})
	}
}

func TestTable_ZeroValue(t *testing.T) {
	var table Table
	_, ok := table.Lookup("main")
	assert.False(t, ok)
	assert.Empty(t, table.Match(regexp.MustCompile(".")))
}

func ExampleTable_Match() {
	var table Table
	table.Load(strings.NewReader(mapFile))

	for _, sym := range table.Match(regexp.MustCompile("^(main|process)")) {
		fmt.Printf("%04x %s\n", sym.Address, sym.Name)
	}
	// Output:
	// f000 main
	// f0a0 process_tick
}
