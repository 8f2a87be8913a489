// Package symbols resolves symbolic addresses from nm-style map files.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Symbol is a named address.
type Symbol struct {
	Name    string
	Address int
	Type    string
}

// Table maps symbol names to addresses. The zero value is an empty table.
type Table struct {
	mu      sync.RWMutex
	symbols map[string]Symbol
}

// Load reads symbols in the format printed by nm:
//
//	0000f000 T main
//	00001100 B counter
//
// Lines with only an address and a name are accepted, blank lines and lines
// starting with # are skipped. Later definitions replace earlier ones.
func (t *Table) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	loaded := make(map[string]Symbol)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var sym Symbol
		switch len(fields) {
		case 2:
			sym.Name = fields[1]
		case 3:
			sym.Type = fields[1]
			sym.Name = fields[2]
		default:
			return fmt.Errorf("symbols line %d: expected \"address [type] name\", got %q", lineNo, line)
		}

		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 32)
		if err != nil {
			return fmt.Errorf("symbols line %d: %w", lineNo, err)
		}
		sym.Address = int(addr)
		loaded[sym.Name] = sym
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.symbols == nil {
		t.symbols = make(map[string]Symbol)
	}
	for name, sym := range loaded {
		t.symbols[name] = sym
	}
	return nil
}

// Lookup returns the address of the named symbol.
func (t *Table) Lookup(name string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sym, ok := t.symbols[name]
	return sym.Address, ok
}

// Match returns the symbols whose names match re, sorted by address.
func (t *Table) Match(re *regexp.Regexp) []Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Symbol
	for _, sym := range t.symbols {
		if re.MatchString(sym.Name) {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address == out[j].Address {
			return out[i].Name < out[j].Name
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Len returns the number of symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.symbols)
}
