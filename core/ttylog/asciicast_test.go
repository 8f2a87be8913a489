package ttylog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeConversions(t *testing.T) {
	cases := map[string]struct {
		microseconds int64
		seconds      float64
	}{
		"precision": {
			microseconds: 1,
			seconds:      1e-6,
		},
		"negative": {
			microseconds: -631119539e6,
			seconds:      -631119539,
		},
		"positive": {
			microseconds: 631119539e6,
			seconds:      631119539,
		},
		"bigprecise": {
			microseconds: 123456789987654,
			seconds:      123456789.987654,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s2m := secondsToMicroseconds(tc.seconds)
			m2s := microsecondsToSeconds(tc.microseconds)

			// Only allow delta to be to the NS
			assert.InDelta(t, m2s, tc.seconds, float64(time.Nanosecond)/float64(time.Second))
			assert.Equal(t, s2m, tc.microseconds)
		})
	}
}

func TestAsciicastRoundTrip(t *testing.T) {
	var cast bytes.Buffer
	recorder := NewRecorder(NewAsciicastLogSink(&cast, 0, 0, "operator@simshell"))

	tick := time.Unix(1600000000, 0)
	recorder.now = func() time.Time {
		tick = tick.Add(250 * time.Millisecond)
		return tick
	}

	in := recorder.Input(io.NopCloser(strings.NewReader("echo hi\n")))
	var screen bytes.Buffer
	out := recorder.Output(&screen)

	line, err := io.ReadAll(in)
	require.NoError(t, err)
	require.NoError(t, in.Close())
	fmt.Fprintf(out, "> %s", line)
	fmt.Fprint(out, "hi\n")
	require.NoError(t, recorder.Err())

	lines := strings.Split(strings.TrimSpace(cast.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"version":2`)
	assert.Contains(t, lines[0], `"width":80`)
	assert.Contains(t, lines[0], `"title":"operator@simshell"`)
	assert.Equal(t, `[0,"i","echo hi\n"]`, lines[1])
	assert.Equal(t, `[0.25,"o","> echo hi\n"]`, lines[2])

	var replayed bytes.Buffer
	require.NoError(t, Replay(NewAsciicastLogSource(&cast), NewClientOutput(&replayed)))
	assert.Equal(t, screen.String(), replayed.String())
}

func TestAsciicastLogSource_Malformed(t *testing.T) {
	cases := map[string]string{
		"short line": "{}\n[1, \"o\"]\n",
		"bad types":  "{}\n[\"1\", \"o\", \"x\"]\n",
		"not json":   "{}\nnope\n",
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			err := Replay(NewAsciicastLogSource(strings.NewReader(tc)), func(*Event) error {
				return nil
			})
			assert.Error(t, err)
		})
	}
}

func TestAsciicastLogSource_SkipsUnknown(t *testing.T) {
	cast := "{\"version\":2}\n\n[0.5, \"m\", \"marker\"]\n[1, \"o\", \"x\"]\n"

	var events []*Event
	require.NoError(t, Replay(NewAsciicastLogSource(strings.NewReader(cast)), func(e *Event) error {
		events = append(events, e)
		return nil
	}))

	require.Len(t, events, 1)
	assert.Equal(t, StreamOutput, events[0].Stream)
	assert.Equal(t, int64(1e6), events[0].TimestampMicros)
}

func TestRecorder_SinkError(t *testing.T) {
	calls := 0
	recorder := NewRecorder(func(*Event) error {
		calls++
		return errors.New("disk full")
	})

	var screen bytes.Buffer
	out := recorder.Output(&screen)
	fmt.Fprint(out, "one")
	fmt.Fprint(out, "two")

	assert.Equal(t, "onetwo", screen.String())
	assert.Equal(t, 1, calls)
	assert.EqualError(t, recorder.Err(), "disk full")
}

func TestRealTimePlayback_NoSleep(t *testing.T) {
	var got []int64
	sink := NewRealTimePlayback(0, func(e *Event) error {
		got = append(got, e.TimestampMicros)
		return nil
	})

	for _, ts := range []int64{10, 5e9, 6e9} {
		require.NoError(t, sink(&Event{TimestampMicros: ts}))
	}
	assert.Equal(t, []int64{10, 5e9, 6e9}, got)
}
