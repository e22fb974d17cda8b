// Package logging sets up the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// levelRouter is a slog.Handler that routes INFO/WARN to one handler and
// ERROR+ to another.
type levelRouter struct {
	out slog.Handler
	err slog.Handler
}

func (lr *levelRouter) Enabled(ctx context.Context, level slog.Level) bool {
	return lr.out.Enabled(ctx, level)
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.err.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		out: lr.out.WithAttrs(attrs),
		err: lr.err.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		out: lr.out.WithGroup(name),
		err: lr.err.WithGroup(name),
	}
}

// NewHandler returns a text handler writing INFO/WARN to out and ERROR to errOut.
func NewHandler(out, errOut io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	return &levelRouter{
		out: slog.NewTextHandler(out, opts),
		err: slog.NewTextHandler(errOut, opts),
	}
}

// Setup installs the default logger: INFO/WARN to stdout, ERROR to stderr
// and, if logPath is set, everything also to that file. The returned
// function closes the file and is never nil.
func Setup(logPath string, verbose bool) (func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	cleanup := func() {}
	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(os.Stdout, f)
		stderr = io.MultiWriter(os.Stderr, f)
	}

	slog.SetDefault(slog.New(NewHandler(stdout, stderr, level)))
	return cleanup, nil
}
