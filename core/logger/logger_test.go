package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"sigs.k8s.io/yaml"
)

func fixedClock() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestJSONLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLinesRecorder(&buf)
	base.now = fixedClock
	session := base.NewSession()

	session.RunCommand("echo hi | grep h", [][]string{{"echo", "hi"}, {"grep", "h"}})
	session.UnknownCommand("nope", "nope")
	session.InvalidInvocation("pair 1", errors.New("Too few arguments for pair"))
	session.CommandFailed("grep", 2)
	session.JobStarted(1, "repeat echo")
	session.JobFinished(1, "repeat echo")
	session.Panic("boom", "kaboom", []byte("stack"))
	base.Login("root", "127.0.0.1:22", false)

	assert.Equal(t, 8, strings.Count(buf.String(), "\n"))

	var entries []*LogEntry
	require.NoError(t, ReadJSONLinesLog(&buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))
	require.Len(t, entries, 8)

	first := entries[0]
	assert.Equal(t, EventRunCommand, first.Event)
	assert.Equal(t, session.SessionID(), first.SessionID)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, fixedClock().UnixMicro(), first.TimestampMicros)
	assert.Equal(t, "echo hi | grep h", first.String("command_line"))

	assert.Equal(t, 2, entries[3].Int("status"))
	assert.Equal(t, "", entries[7].SessionID)

	var report Report
	var bugs = NewBugReport()
	for _, le := range entries {
		report.Update(le)
		bugs.Update(le)
	}

	assert.Equal(t, 8, report.LogEntries)
	assert.Equal(t, 1, report.RunCommand.CommandNames.Get("echo"))
	assert.Equal(t, 1, report.RunCommand.PipelineLengths.Get("2"))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Get("nope"))
	assert.Equal(t, 1, report.CommandFailed.Statuses.Get("2"))
	assert.Equal(t, 1, report.Jobs.Started)
	assert.Equal(t, 1, report.Jobs.Finished)
	assert.Equal(t, 1, report.Login.Results.Get("rejected"))
	assert.Equal(t, []string{"boom"}, report.Panic.Contexts)
	assert.Equal(t, 7, report.Sessions.Get(session.SessionID()))

	assert.Len(t, bugs.Panics, 1)

	out, err := yaml.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "log_entries: 8")
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NoError(t, r.Record(EventRunCommand, nil))
	assert.Nil(t, r.NewSession())
	assert.Equal(t, "", r.SessionID())
	r.JobStarted(1, "x")
}

func TestRecordInvalidField(t *testing.T) {
	r := NewRecorder(func(entry *structpb.Struct) error { return nil })
	err := r.Record(EventRunCommand, map[string]interface{}{"bad": struct{}{}})
	assert.Error(t, err)
}

func TestNewAppLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewAppLogger(&buf, "warn")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewAppLogger(&buf, "loud")
	assert.Error(t, err)
}
