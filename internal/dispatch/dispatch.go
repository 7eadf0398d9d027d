// Package dispatch turns resolved environments and abstract commands into
// exact subprocess invocations.
//
// A dispatched command is always a direct argv vector. There is no shell and
// no venv activation script anywhere: the resolved interpreter is simply
// prepended to the argv, with "-m" in between for module invocations. Extra
// environment variables are expanded and merged additively over the inherited
// process environment.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/dbxdev/dbx/internal/config"
	"github.com/dbxdev/dbx/internal/log"
	"github.com/dbxdev/dbx/internal/venv"
)

// Command describes what to run, independent of which interpreter will run it.
type Command struct {
	// Argv is the program or module and its arguments, without interpreter.
	Argv []string
	// Dir is the working directory, empty for the current one.
	Dir string
	// Env holds extra environment variables. Values may contain {base_dir},
	// {group} and a leading ~; they are expanded before merging.
	Env map[string]string
	// UseModule invokes Argv[0] with "python -m".
	UseModule bool
}

// Outcome is the result of a command that actually ran.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports a zero exit code.
func (o Outcome) Succeeded() bool { return o.ExitCode == 0 }

// SpawnError reports that a process could not be started at all. It is
// distinct from a non-zero exit, which is a normal Outcome.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Argv builds the final argument vector for running c under env:
// [interpreter] (+ ["-m"]) + c.Argv.
func Argv(env venv.Environment, c Command) []string {
	argv := make([]string, 0, len(c.Argv)+2)
	argv = append(argv, env.Interpreter)
	if c.UseModule {
		argv = append(argv, "-m")
	}
	return append(argv, c.Argv...)
}

// Runner executes commands with a fixed expansion context.
type Runner struct {
	// BaseDir and Group feed placeholder expansion of Command.Env values.
	BaseDir string
	Group   string

	// Stream connects the child directly to Stdout/Stderr instead of
	// capturing. Captured output lands in the Outcome.
	Stream bool
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes c under the resolved environment env.
func (r *Runner) Run(ctx context.Context, env venv.Environment, c Command) (Outcome, error) {
	return r.exec(ctx, Argv(env, c), c)
}

// RunTool executes c as-is, without an interpreter prefix. Used for external
// tools like git, uv, just and npm.
func (r *Runner) RunTool(ctx context.Context, c Command) (Outcome, error) {
	return r.exec(ctx, c.Argv, c)
}

func (r *Runner) exec(ctx context.Context, argv []string, c Command) (Outcome, error) {
	if len(argv) == 0 {
		return Outcome{}, fmt.Errorf("empty command")
	}
	log.FromContext(ctx).Command(argv[0], argv[1:]...)

	child := exec.CommandContext(ctx, argv[0], argv[1:]...)
	child.Dir = c.Dir
	child.Env = r.mergedEnv(c.Env)
	child.Stdin = os.Stdin

	var stdout, stderr bytes.Buffer
	if r.Stream {
		child.Stdout = r.stdout()
		child.Stderr = r.stderr()
	} else {
		child.Stdout = &stdout
		child.Stderr = &stderr
	}

	if err := child.Start(); err != nil {
		return Outcome{}, &SpawnError{Path: argv[0], Err: err}
	}

	err := child.Wait()
	outcome := Outcome{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return outcome, fmt.Errorf("waiting for %s: %w", argv[0], err)
		}
		outcome.ExitCode = exitErr.ExitCode()
	}
	return outcome, nil
}

// mergedEnv builds the child environment: the inherited process environment
// with the expanded extra variables appended. Appending is enough because the
// last entry wins, so configured variables override inherited ones.
func (r *Runner) mergedEnv(extra map[string]string) []string {
	env := os.Environ()
	if len(extra) == 0 {
		return env
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+config.Expand(extra[k], r.BaseDir, r.Group))
	}
	return env
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
