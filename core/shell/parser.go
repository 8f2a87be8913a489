package shell

import (
	"strings"
)

type parseState int

const (
	// stateText is between tokens.
	stateText parseState = iota
	// stateArg is inside an unquoted token.
	stateArg
	// stateQuote is inside a quoted span.
	stateQuote
)

const pipeSeparator = '|'

// tokenBuffer accumulates the bytes of the token being parsed.
type tokenBuffer struct {
	builder strings.Builder
}

func (tb *tokenBuffer) appendByte(c byte) {
	tb.builder.WriteByte(c)
}

func (tb *tokenBuffer) flush() string {
	s := tb.builder.String()
	tb.builder.Reset()
	return s
}

// Parse splits a command line into pipeline stages, each stage being the
// command name followed by its arguments.
//
// Tokens are separated by whitespace (any byte <= 0x20). Single and double
// quotes delimit literal spans, a backslash outside of quotes copies the next
// byte verbatim and | separates stages. A blank line has no stages.
func Parse(line string) ([][]string, error) {
	var (
		stages [][]string
		args   []string
		tb     tokenBuffer
		state  = stateText
		quote  byte
	)

	commit := func() {
		args = append(args, tb.flush())
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		if state == stateQuote {
			if c == quote {
				commit()
				state = stateText
			} else {
				tb.appendByte(c)
			}
			continue
		}

		switch {
		case c <= ' ':
			if state == stateArg {
				commit()
				state = stateText
			}

		case c == '\\':
			i++
			if i >= len(line) {
				return nil, &ParseError{Line: line, Offset: i - 1, Reason: "unexpected end of line"}
			}
			tb.appendByte(line[i])
			state = stateArg

		case c == '"' || c == '\'':
			if state == stateArg {
				commit()
			}
			quote = c
			state = stateQuote

		case c == pipeSeparator:
			if state == stateArg {
				commit()
			}
			state = stateText
			if len(args) == 0 {
				return nil, &ParseError{Line: line, Offset: i, Reason: "empty command"}
			}
			stages = append(stages, args)
			args = nil

		default:
			tb.appendByte(c)
			state = stateArg
		}
	}

	switch state {
	case stateQuote:
		return nil, &ParseError{Line: line, Offset: len(line), Reason: "unexpected end of line"}
	case stateArg:
		commit()
	}

	if len(args) == 0 {
		if len(stages) > 0 {
			// The line ended with a pipe.
			return nil, &ParseError{Line: line, Offset: len(line), Reason: "empty command"}
		}
		return nil, nil
	}

	return append(stages, args), nil
}
