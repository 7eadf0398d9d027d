// Package log provides context-aware logging for dbx.
//
// The logger writes diagnostics to stderr so that stdout stays clean for
// primary output. Commands store a logger in the context during setup and
// library code retrieves it with FromContext; when none is attached a no-op
// logger is returned so library code never has to nil-check.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type ctxKey struct{}

// Logger writes diagnostic output with verbose and quiet modes.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
}

// New creates a logger writing to out.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, verbose: verbose, quiet: quiet}
}

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{out: io.Discard}
}

// Printf writes formatted diagnostic output. Suppressed in quiet mode.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of diagnostic output. Suppressed in quiet mode.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Warnf writes a warning. Warnings print even in quiet mode.
func (l *Logger) Warnf(format string, args ...any) {
	fmt.Fprintf(l.out, "warning: "+format, args...)
}

// Verbosef writes formatted output only in verbose mode.
func (l *Logger) Verbosef(format string, args ...any) {
	if l.verbose {
		fmt.Fprintf(l.out, format, args...)
	}
}

// Command logs an external command invocation as "$ name args".
// Only prints in verbose mode.
func (l *Logger) Command(name string, args ...string) {
	if l.verbose {
		fmt.Fprintf(l.out, "$ %s %s\n", name, strings.Join(args, " "))
	}
}

// Verbose reports whether verbose mode is enabled.
func (l *Logger) Verbose() bool { return l.verbose }

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer { return l.out }
