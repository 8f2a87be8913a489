package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// LogEntry is a single event read back from the log.
type LogEntry struct {
	TimestampMicros int64
	SessionID       string
	Event           string
	Fields          map[string]interface{}
}

// String returns a string field of the event or "" if it's missing.
func (le *LogEntry) String(name string) string {
	s, _ := le.Fields[name].(string)
	return s
}

// Int returns a numeric field of the event or 0 if it's missing.
func (le *LogEntry) Int(name string) int {
	f, _ := le.Fields[name].(float64)
	return int(f)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var entry structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &entry); err != nil {
			return err
		}

		le := &LogEntry{
			TimestampMicros: int64(entry.GetFields()[fieldTimestamp].GetNumberValue()),
			SessionID:       entry.GetFields()[fieldSessionID].GetStringValue(),
			Event:           entry.GetFields()[fieldEvent].GetStringValue(),
		}
		if payload := entry.GetFields()[le.Event].GetStructValue(); payload != nil {
			le.Fields = payload.AsMap()
		}

		handler(le)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand        RunCommandReport        `json:"run_command_report"`
	UnknownCommand    UnknownCommandReport    `json:"unknown_command_report"`
	InvalidInvocation InvalidInvocationReport `json:"invalid_invocation_report"`
	CommandFailed     CommandFailedReport     `json:"command_failed_report"`
	Jobs              JobReport               `json:"job_report"`
	Login             LoginReport             `json:"login_report"`
	Panic             PanicReport             `json:"panic_report"`
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	switch le.Event {
	case EventRunCommand:
		r.RunCommand.update(le)
	case EventUnknownCommand:
		r.UnknownCommand.update(le)
	case EventInvalidInvocation:
		r.InvalidInvocation.update(le)
	case EventCommandFailed:
		r.CommandFailed.update(le)
	case EventJobStarted, EventJobFinished:
		r.Jobs.update(le)
	case EventLogin:
		r.Login.update(le)
	case EventPanic:
		r.Panic.update(le)
	default:
		r.InvalidEntries.Increment(le.Event)
	}
}

type RunCommandReport struct {
	// Names of the commands heading each line.
	CommandNames StrCounter `json:"command_names"`
	// Number of stages in each line.
	PipelineLengths StrCounter `json:"pipeline_lengths"`
}

func (r *RunCommandReport) update(le *LogEntry) {
	stages, _ := le.Fields["stages"].([]interface{})
	r.PipelineLengths.Increment(strconv.Itoa(len(stages)))
	if len(stages) == 0 {
		return
	}
	if head, ok := stages[0].([]interface{}); ok && len(head) > 0 {
		name, _ := head[0].(string)
		r.CommandNames.Increment(name)
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.String("command"))
}

type InvalidInvocationReport struct {
	Errors StrCounter `json:"errors"`
}

func (r *InvalidInvocationReport) update(le *LogEntry) {
	r.Errors.Increment(le.String("error"))
}

type CommandFailedReport struct {
	CommandNames StrCounter `json:"command_names"`
	Statuses     StrCounter `json:"statuses"`
}

func (r *CommandFailedReport) update(le *LogEntry) {
	r.CommandNames.Increment(le.String("command"))
	r.Statuses.Increment(strconv.Itoa(le.Int("status")))
}

type JobReport struct {
	Started      int        `json:"started"`
	Finished     int        `json:"finished"`
	CommandLines StrCounter `json:"command_lines"`
}

func (r *JobReport) update(le *LogEntry) {
	if le.Event == EventJobStarted {
		r.Started++
		r.CommandLines.Increment(le.String("command_line"))
	} else {
		r.Finished++
	}
}

type LoginReport struct {
	// List of usernames and their counts.
	Usernames StrCounter `json:"usernames"`
	// List of login attempt results and their counts.
	Results StrCounter `json:"results"`
}

func (r *LoginReport) update(le *LogEntry) {
	r.Usernames.Increment(le.String("username"))
	if accepted, _ := le.Fields["accepted"].(bool); accepted {
		r.Results.Increment("accepted")
	} else {
		r.Results.Increment("rejected")
	}
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(le *LogEntry) {
	r.Contexts = append(r.Contexts, le.String("context"))
}

// BugReport pulls events that are likely bugs in installed commands.
type BugReport struct {
	LogEntries int `json:"log_entries"`

	InvalidInvocations *PathCounter `json:"invalid_invocations"`
	FailedCommands     *PathCounter `json:"failed_commands"`
	Panics             []string     `json:"panics"`
}

func NewBugReport() *BugReport {
	return &BugReport{
		InvalidInvocations: NewPathCounter("command_line", "error"),
		FailedCommands:     NewPathCounter("command", "status"),
	}
}

// Update adds the entry to the report.
func (r *BugReport) Update(le *LogEntry) {
	r.LogEntries++

	switch le.Event {
	case EventPanic:
		r.Panics = append(r.Panics, le.String("cause")+"\n"+le.String("stacktrace"))
	case EventInvalidInvocation:
		r.InvalidInvocations.Increment(le.String("command_line"), le.String("error"))
	case EventCommandFailed:
		r.FailedCommands.Increment(le.String("command"), strconv.Itoa(le.Int("status")))
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count of the given key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements a custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
