package shell

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// lineWriter splits written bytes into lines and hands them to the next
// stage of a pipeline.
type lineWriter struct {
	// deliverMu keeps lines from concurrent producers in order.
	deliverMu sync.Mutex

	mu     sync.Mutex
	buf    []byte
	closed bool

	consumer LineConsumer
	ctx      *Context
}

var _ io.WriteCloser = (*lineWriter)(nil)

func newLineWriter(consumer LineConsumer, ctx *Context) *lineWriter {
	return &lineWriter{consumer: consumer, ctx: ctx}
}

// Write implements io.Writer. Lines written after Close or after the
// consumer exited are dropped.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return len(p), nil
	}
	w.buf = append(w.buf, p...)
	var lines []string
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, strings.TrimSuffix(string(w.buf[:idx]), "\r"))
		w.buf = w.buf[idx+1:]
	}
	w.mu.Unlock()

	// Consumers may exit while handling a line, which closes this writer, so
	// delivery happens outside of mu.
	for _, line := range lines {
		w.deliver(line)
	}
	return len(p), nil
}

func (w *lineWriter) deliver(line string) {
	if w.ctx.Exited() {
		return
	}
	w.consumer.ConsumeLine(line)
}

// Close flushes a trailing partial line and signals the end of lines.
func (w *lineWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	rest := string(w.buf)
	w.buf = nil
	w.mu.Unlock()

	if rest != "" {
		w.deliver(rest)
	}
	if !w.ctx.Exited() {
		w.consumer.EndOfLines()
	}
	return nil
}
