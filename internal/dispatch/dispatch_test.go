package dispatch

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dbxdev/dbx/internal/venv"
)

func TestArgv(t *testing.T) {
	t.Parallel()

	env := venv.Environment{Interpreter: "/srv/dev/billing/.venv/bin/python", Kind: venv.KindGroup}

	tests := []struct {
		name string
		cmd  Command
		want []string
	}{
		{
			name: "module invocation",
			cmd:  Command{Argv: []string{"pytest", "-k", "smoke"}, UseModule: true},
			want: []string{"/srv/dev/billing/.venv/bin/python", "-m", "pytest", "-k", "smoke"},
		},
		{
			name: "script invocation",
			cmd:  Command{Argv: []string{"scripts/run_tests.py", "--fast"}},
			want: []string{"/srv/dev/billing/.venv/bin/python", "scripts/run_tests.py", "--fast"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Argv(env, tt.cmd)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Argv() = %v, want %v", got, tt.want)
			}
			// Never a shell, never an activation script.
			for _, arg := range got {
				for _, banned := range []string{"sh", "bash", "source", "activate"} {
					if arg == banned || strings.Contains(arg, "activate") {
						t.Errorf("argv contains %q", arg)
					}
				}
			}
		})
	}
}

func TestRunCaptures(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	outcome, err := r.RunTool(context.Background(), Command{Argv: []string{"sh", "-c", "echo out; echo err >&2"}})
	if err != nil {
		t.Fatalf("RunTool() error = %v", err)
	}
	if !outcome.Succeeded() {
		t.Errorf("ExitCode = %d", outcome.ExitCode)
	}
	if strings.TrimSpace(outcome.Stdout) != "out" {
		t.Errorf("Stdout = %q", outcome.Stdout)
	}
	if strings.TrimSpace(outcome.Stderr) != "err" {
		t.Errorf("Stderr = %q", outcome.Stderr)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	outcome, err := r.RunTool(context.Background(), Command{Argv: []string{"sh", "-c", "exit 4"}})
	if err != nil {
		t.Fatalf("RunTool() error = %v, want nil for a non-zero exit", err)
	}
	if outcome.ExitCode != 4 {
		t.Errorf("ExitCode = %d, want 4", outcome.ExitCode)
	}
	if outcome.Succeeded() {
		t.Error("Succeeded() = true for exit 4")
	}
}

func TestRunSpawnError(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	_, err := r.RunTool(context.Background(), Command{Argv: []string{"/nonexistent/definitely-not-a-binary"}})
	var spawn *SpawnError
	if !errors.As(err, &spawn) {
		t.Fatalf("RunTool() = %v, want *SpawnError", err)
	}
	if spawn.Path != "/nonexistent/definitely-not-a-binary" {
		t.Errorf("Path = %q", spawn.Path)
	}
}

func TestRunExtraEnvExpandedAndMerged(t *testing.T) {
	t.Setenv("DBX_TEST_INHERITED", "kept")

	r := &Runner{BaseDir: "/srv/dev", Group: "billing"}
	outcome, err := r.RunTool(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo $DATA_DIR; echo $DBX_TEST_INHERITED"},
		Env:  map[string]string{"DATA_DIR": "{base_dir}/{group}/data"},
	})
	if err != nil {
		t.Fatalf("RunTool() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(outcome.Stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("stdout = %q", outcome.Stdout)
	}
	if lines[0] != "/srv/dev/billing/data" {
		t.Errorf("DATA_DIR = %q, want expanded value", lines[0])
	}
	if lines[1] != "kept" {
		t.Errorf("inherited variable = %q, want %q", lines[1], "kept")
	}
}

func TestRunExtraEnvOverridesInherited(t *testing.T) {
	t.Setenv("DBX_TEST_CLASH", "inherited")

	r := &Runner{}
	outcome, err := r.RunTool(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo $DBX_TEST_CLASH"},
		Env:  map[string]string{"DBX_TEST_CLASH": "configured"},
	})
	if err != nil {
		t.Fatalf("RunTool() error = %v", err)
	}
	if got := strings.TrimSpace(outcome.Stdout); got != "configured" {
		t.Errorf("value = %q, want the configured variable to win", got)
	}
}

func TestRunInterpreterPrefixed(t *testing.T) {
	t.Parallel()

	// Use /bin/sh as a stand-in interpreter: sh -c 'echo ran' shows the
	// resolved interpreter really is argv[0].
	env := venv.Environment{Interpreter: "/bin/sh", Kind: venv.KindRepo}
	r := &Runner{}
	outcome, err := r.Run(context.Background(), env, Command{Argv: []string{"-c", "echo ran"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(outcome.Stdout) != "ran" {
		t.Errorf("Stdout = %q", outcome.Stdout)
	}
}

func TestRunBatchOrderAndConjunction(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	units := []Unit{
		{Name: "first", Tool: true, Command: Command{Argv: []string{"true"}}},
		{Name: "second", Tool: true, Command: Command{Argv: []string{"sh", "-c", "exit 1"}}},
		{Name: "third", Tool: true, Command: Command{Argv: []string{"true"}}},
	}

	results, ok := r.RunBatch(context.Background(), venv.Environment{}, units)
	if ok {
		t.Error("RunBatch() ok = true, want overall failure")
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want all units to run", len(results))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Name != want {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, want)
		}
	}
	if results[0].Failed() || results[2].Failed() {
		t.Error("surrounding units failed, want the middle failure isolated")
	}
	if !results[1].Failed() {
		t.Error("results[1].Failed() = false, want exit 1 recorded as failure")
	}
}

func TestRunBatchAllSucceed(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	units := []Unit{
		{Name: "a", Tool: true, Command: Command{Argv: []string{"true"}}},
		{Name: "b", Tool: true, Command: Command{Argv: []string{"true"}}},
	}
	results, ok := r.RunBatch(context.Background(), venv.Environment{}, units)
	if !ok {
		t.Error("RunBatch() ok = false, want success")
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d", len(results))
	}
}

func TestRunBatchSpawnFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	units := []Unit{
		{Name: "missing", Tool: true, Command: Command{Argv: []string{"/no/such/tool"}}},
		{Name: "after", Tool: true, Command: Command{Argv: []string{"true"}}},
	}
	results, ok := r.RunBatch(context.Background(), venv.Environment{}, units)
	if ok {
		t.Error("ok = true, want failure")
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want the batch to continue past the spawn error", len(results))
	}
	var spawn *SpawnError
	if !errors.As(results[0].Err, &spawn) {
		t.Errorf("results[0].Err = %v, want *SpawnError", results[0].Err)
	}
	if results[1].Failed() {
		t.Error("unit after the spawn failure did not run cleanly")
	}
}
