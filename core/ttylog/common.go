// Package ttylog records and replays console sessions.
package ttylog

import (
	"io"
	"sync"
	"time"
)

// Stream identifies the direction of recorded data.
type Stream int

const (
	StreamInput Stream = iota
	StreamOutput
)

// Event is a chunk of data that crossed the console at a point in time.
type Event struct {
	TimestampMicros int64
	Stream          Stream
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Event) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*Event, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Event) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes the output stream to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Event) error {
		if e.Stream != StreamOutput {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder copies the data passing through wrapped readers and writers to a
// sink.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
	err    error
}

// NewRecorder creates a recorder that forwards all events to output.
func NewRecorder(output LogSink) *Recorder {
	return &Recorder{output: output, now: time.Now}
}

func (r *Recorder) record(stream Stream, data []byte) {
	if len(data) == 0 {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.err != nil {
		return
	}
	r.err = r.output(&Event{
		TimestampMicros: r.now().UnixMicro(),
		Stream:          stream,
		Data:            append([]byte(nil), data...),
	})
}

// Err returns the first error the sink returned, recording stops after it.
func (r *Recorder) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.err
}

// Input records everything read from rc.
func (r *Recorder) Input(rc io.ReadCloser) io.ReadCloser {
	return &recorderReadCloser{r: r, wrapped: rc}
}

// Output records everything written to w.
func (r *Recorder) Output(w io.Writer) io.Writer {
	return &recorderWriter{r: r, wrapped: w}
}

type recorderReadCloser struct {
	r       *Recorder
	wrapped io.ReadCloser
}

var _ io.ReadCloser = (*recorderReadCloser)(nil)

func (rc *recorderReadCloser) Read(p []byte) (int, error) {
	n, err := rc.wrapped.Read(p)
	rc.r.record(StreamInput, p[:n])
	return n, err
}

func (rc *recorderReadCloser) Close() error {
	return rc.wrapped.Close()
}

type recorderWriter struct {
	r       *Recorder
	wrapped io.Writer
}

var _ io.Writer = (*recorderWriter)(nil)

func (rw *recorderWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.record(StreamOutput, p[:n])
	return n, err
}
