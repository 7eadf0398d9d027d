package cmd

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dbxdev/dbx/internal/log"
)

func logCtx() context.Context {
	return log.WithLogger(context.Background(), log.New(io.Discard, false, false))
}

func TestRunContext(t *testing.T) {
	t.Parallel()

	if err := RunContext(logCtx(), "", "true"); err != nil {
		t.Fatalf("RunContext(true) = %v, want nil", err)
	}
}

func TestRunContextFailure(t *testing.T) {
	t.Parallel()

	err := RunContext(logCtx(), "", "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("RunContext() = nil, want error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %q, want stderr content", err)
	}
}

func TestRunContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(logCtx(), 50*time.Millisecond)
	defer cancel()

	err := RunContext(ctx, "", "sleep", "10")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunContext() = %v, want deadline exceeded", err)
	}
}

func TestOutputContext(t *testing.T) {
	t.Parallel()

	out, err := OutputContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("OutputContext() = %q, want %q", out, "hello")
	}
}

func TestOutputContextTrimsWhitespace(t *testing.T) {
	t.Parallel()

	out, err := OutputContext(logCtx(), "", "sh", "-c", "printf '  spaced  \\n'")
	if err != nil {
		t.Fatalf("OutputContext() error = %v", err)
	}
	if out != "spaced" {
		t.Errorf("OutputContext() = %q, want %q", out, "spaced")
	}
}

func TestOutputContextDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, err := OutputContext(logCtx(), dir, "pwd")
	if err != nil {
		t.Fatalf("OutputContext() error = %v", err)
	}
	if !strings.HasSuffix(out, strings.TrimPrefix(dir, "/private")) && out != dir {
		t.Errorf("OutputContext(pwd) = %q, want %q", out, dir)
	}
}
