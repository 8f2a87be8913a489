// Package sink holds the line sinks that command output can be redirected
// into.
package sink

import (
	"os"
	"sync"

	"github.com/spf13/afero"
)

// File writes lines to a file, one write per line so the file is always
// complete up to the last line.
type File struct {
	mu sync.Mutex
	fd afero.File
}

// OpenFile opens name in fs for writing. Existing contents are kept when
// appending and truncated otherwise.
func OpenFile(fs afero.Fs, name string, append bool) (*File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	fd, err := fs.OpenFile(name, flags, 0644)
	if err != nil {
		return nil, err
	}
	return &File{fd: fd}, nil
}

// Name returns the name of the underlying file.
func (f *File) Name() string {
	return f.fd.Name()
}

func (f *File) WriteLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := f.fd.WriteString(line + "\n")
	return err
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fd.Close()
}
