package dispatch

import (
	"context"

	"github.com/dbxdev/dbx/internal/venv"
)

// Unit is one named command within a batch.
type Unit struct {
	// Name identifies the unit in results, usually a repo or package name.
	Name string
	Command
	// Tool runs the unit without an interpreter prefix.
	Tool bool
}

// UnitResult is the per-unit record of a batch run.
type UnitResult struct {
	Name    string
	Outcome Outcome
	// Err is set for spawn failures and cancellation, not non-zero exits.
	Err error
}

// Failed reports whether the unit did not complete successfully.
func (r UnitResult) Failed() bool {
	return r.Err != nil || !r.Outcome.Succeeded()
}

// RunBatch executes every unit in order. A failing unit never aborts the
// batch; its result records the failure and the next unit runs. The bool
// return is the conjunction of all unit successes. Results preserve the
// configured order. Only context cancellation stops the batch early, and the
// cancelled unit's result still carries the context error.
func (r *Runner) RunBatch(ctx context.Context, env venv.Environment, units []Unit) ([]UnitResult, bool) {
	results := make([]UnitResult, 0, len(units))
	ok := true
	for _, unit := range units {
		var (
			outcome Outcome
			err     error
		)
		if unit.Tool {
			outcome, err = r.RunTool(ctx, unit.Command)
		} else {
			outcome, err = r.Run(ctx, env, unit.Command)
		}
		result := UnitResult{Name: unit.Name, Outcome: outcome, Err: err}
		results = append(results, result)
		if result.Failed() {
			ok = false
		}
		if ctx.Err() != nil {
			return results, false
		}
	}
	return results, ok
}
