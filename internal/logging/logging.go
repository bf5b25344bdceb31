// Package logging builds the process logger: slog text records appended to
// a log file, optionally mirrored to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type Options struct {
	// Path of the log file. Empty disables file output.
	Path    string
	Verbose bool
	// Stderr mirrors records to Stderr. Leave it off while the TUI owns
	// the terminal.
	Stderr bool
	// Writer replaces os.Stderr for the mirrored output.
	Writer io.Writer
}

// Setup returns a logger for opts and a closer for the underlying file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	writers := make([]io.Writer, 0, 2)
	var closer io.Closer = nopCloser{}
	if opts.Stderr {
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		writers = append(writers, w)
	}
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
