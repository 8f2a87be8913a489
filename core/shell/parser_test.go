package shell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]struct {
		line    string
		want    [][]string
		wantErr bool
	}{
		"blank": {
			line: "",
			want: nil,
		},
		"whitespace only": {
			line: " \t  ",
			want: nil,
		},
		"single stage": {
			line: "a b c",
			want: [][]string{{"a", "b", "c"}},
		},
		"two stages": {
			line: "a | b",
			want: [][]string{{"a"}, {"b"}},
		},
		"pipe without spaces": {
			line: "a 1|b 2|c",
			want: [][]string{{"a", "1"}, {"b", "2"}, {"c"}},
		},
		"double quoted": {
			line: `a "b c" d`,
			want: [][]string{{"a", "b c", "d"}},
		},
		"single quoted": {
			line: `echo 'x | y'`,
			want: [][]string{{"echo", "x | y"}},
		},
		"quotes nest the other kind": {
			line: `echo "it's" 'say "hi"'`,
			want: [][]string{{"echo", "it's", `say "hi"`}},
		},
		"empty quoted token": {
			line: `a "" b`,
			want: [][]string{{"a", "", "b"}},
		},
		"quote commits pending token": {
			line: `ab"cd"`,
			want: [][]string{{"ab", "cd"}},
		},
		"no escapes inside quotes": {
			line: `a "b\c"`,
			want: [][]string{{"a", `b\c`}},
		},
		"escaped space": {
			line: `a b\ c`,
			want: [][]string{{"a", "b c"}},
		},
		"escaped pipe": {
			line: `a \| b`,
			want: [][]string{{"a", "|", "b"}},
		},
		"escaped quote": {
			line: `a \"b`,
			want: [][]string{{"a", `"b`}},
		},
		"control characters separate": {
			line: "a\tb\r\nc",
			want: [][]string{{"a", "b", "c"}},
		},
		"trailing pipe": {
			line:    "a|",
			wantErr: true,
		},
		"double pipe": {
			line:    "a || b",
			wantErr: true,
		},
		"leading pipe": {
			line:    "| a",
			wantErr: true,
		},
		"unterminated single quote": {
			line:    "'unterminated",
			wantErr: true,
		},
		"unterminated double quote": {
			line:    `a "b`,
			wantErr: true,
		},
		"trailing backslash": {
			line:    `a \`,
			wantErr: true,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := Parse(tc.line)
			if tc.wantErr {
				var parseErr *ParseError
				assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
				assert.Nil(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse("a|")
	assert.EqualError(t, err, "empty command at column 3")

	_, err = Parse("'x")
	assert.EqualError(t, err, "unexpected end of line at column 3")
}
