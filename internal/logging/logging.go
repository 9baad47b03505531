// Package logging builds the structured loggers used by the command-line
// tools.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is the minimum level, e.g. "debug" or "warn". Empty means info.
	Level string
	// Format is "text", "json" or "auto". Auto picks text when the output
	// is a terminal and JSON otherwise.
	Format string
	// File, when set, sends logs to a size-rotated file instead of Output.
	File string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger and a close function releasing its file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	var level slog.Level
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		return slog.New(slog.NewJSONHandler(file, handlerOpts)), file.Close, nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "auto":
		if isTerminal(out) {
			handler = slog.NewTextHandler(out, handlerOpts)
		} else {
			handler = slog.NewJSONHandler(out, handlerOpts)
		}
	case "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return slog.New(handler), func() error { return nil }, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
