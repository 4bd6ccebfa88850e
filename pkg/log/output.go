package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// WriterOutput serialises writes of formatted entries to an io.Writer.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput writes to stderr so stdout stays free for command output.
func NewConsoleOutput() *WriterOutput { return &WriterOutput{w: os.Stderr} }

// NewWriterOutput writes to w.
func NewWriterOutput(w io.Writer) *WriterOutput { return &WriterOutput{w: w} }

func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close closes the underlying writer unless it is stdout or stderr.
func (o *WriterOutput) Close() error {
	if o.w == os.Stdout || o.w == os.Stderr {
		return nil
	}
	if c, ok := o.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewFileOutput appends to path, creating parent directories as needed.
func NewFileOutput(path string) (*WriterOutput, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &WriterOutput{w: f}, nil
}

// NullOutput discards everything.
type NullOutput struct{}

func (NullOutput) Write(*Entry, []byte) error { return nil }
func (NullOutput) Close() error               { return nil }
