package logger

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Event names written to the log.
const (
	EventRunCommand        = "run_command"
	EventUnknownCommand    = "unknown_command"
	EventInvalidInvocation = "invalid_invocation"
	EventCommandFailed     = "command_failed"
	EventJobStarted        = "job_started"
	EventJobFinished       = "job_finished"
	EventPanic             = "panic"
	EventLogin             = "login"
)

const (
	fieldTimestamp = "timestamp_micros"
	fieldSessionID = "session_id"
	fieldEvent     = "event"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(entry *structpb.Struct) error

// Recorder captures the events of a session. A nil Recorder discards
// everything.
type Recorder struct {
	record    LogRecorder
	sessionID string
	now       func() time.Time
}

// NewRecorder creates a Recorder without a session that stores events with
// record.
func NewRecorder(record LogRecorder) *Recorder {
	return &Recorder{record: record, now: time.Now}
}

// NewJSONLinesRecorder creates a Recorder that exports events in newline
// delimited JSON object format.
func NewJSONLinesRecorder(w io.Writer) *Recorder {
	var mu sync.Mutex
	return NewRecorder(func(entry *structpb.Struct) error {
		out, err := protojson.Marshal(entry)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		_, err = fmt.Fprintln(w, string(out))
		return err
	})
}

// NewSession creates a recorder sharing the destination with a new session
// ID.
func (r *Recorder) NewSession() *Recorder {
	if r == nil {
		return nil
	}
	return &Recorder{record: r.record, now: r.now, sessionID: uuid.NewString()}
}

// SessionID returns the ID stamped on every event.
func (r *Recorder) SessionID() string {
	if r == nil {
		return ""
	}
	return r.sessionID
}

// Record writes a single event. Field values must be representable by
// structpb.NewValue.
func (r *Recorder) Record(event string, fields map[string]interface{}) error {
	if r == nil || r.record == nil {
		return nil
	}

	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}

	entry := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldTimestamp: structpb.NewNumberValue(float64(r.now().UnixMicro())),
			fieldSessionID: structpb.NewStringValue(r.sessionID),
			fieldEvent:     structpb.NewStringValue(event),
			event:          structpb.NewStructValue(payload),
		},
	}
	return r.record(entry)
}

func stringList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// RunCommand records a parsed command line.
func (r *Recorder) RunCommand(line string, stages [][]string) {
	var commands []interface{}
	for _, stage := range stages {
		commands = append(commands, stringList(stage))
	}

	_ = r.Record(EventRunCommand, map[string]interface{}{
		"command_line": line,
		"stages":       commands,
	})
}

// UnknownCommand records a line naming a command that doesn't exist.
func (r *Recorder) UnknownCommand(line, name string) {
	_ = r.Record(EventUnknownCommand, map[string]interface{}{
		"command_line": line,
		"command":      name,
	})
}

// InvalidInvocation records a line that was rejected before running.
func (r *Recorder) InvalidInvocation(line string, err error) {
	_ = r.Record(EventInvalidInvocation, map[string]interface{}{
		"command_line": line,
		"error":        err.Error(),
	})
}

// CommandFailed records a stage that returned a non-zero status.
func (r *Recorder) CommandFailed(name string, status int) {
	_ = r.Record(EventCommandFailed, map[string]interface{}{
		"command": name,
		"status":  status,
	})
}

// JobStarted records a pipeline that became a job.
func (r *Recorder) JobStarted(pid int, line string) {
	_ = r.Record(EventJobStarted, map[string]interface{}{
		"pid":          pid,
		"command_line": line,
	})
}

// JobFinished records a job that ended or was killed.
func (r *Recorder) JobFinished(pid int, line string) {
	_ = r.Record(EventJobFinished, map[string]interface{}{
		"pid":          pid,
		"command_line": line,
	})
}

// Panic records a command that panicked.
func (r *Recorder) Panic(context, cause string, stack []byte) {
	_ = r.Record(EventPanic, map[string]interface{}{
		"context":    context,
		"cause":      cause,
		"stacktrace": string(stack),
	})
}

// Login records an authentication attempt on the remote console.
func (r *Recorder) Login(username, remoteAddr string, accepted bool) {
	_ = r.Record(EventLogin, map[string]interface{}{
		"username":    username,
		"remote_addr": remoteAddr,
		"accepted":    accepted,
	})
}
