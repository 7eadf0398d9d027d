package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dbxdev/dbx/internal/log"
)

// RunContext runs a command in dir, discarding stdout. If the command exits
// non-zero, the trimmed stderr is returned as the error message. Context
// cancellation is surfaced as the context's error.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return commandError(name, err, stderr.String())
	}
	return nil
}

// OutputContext runs a command in dir and returns its trimmed stdout.
func OutputContext(ctx context.Context, dir, name string, args ...string) (string, error) {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", commandError(name, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// commandError builds an error from a failed command, preferring the
// command's own stderr over the generic exec error.
func commandError(name string, err error, stderr string) error {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%s: %s", name, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}
