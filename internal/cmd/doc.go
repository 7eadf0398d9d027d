// Package cmd provides low-level helpers for running external commands.
//
// Subprocess stderr is captured and folded into the returned error so that
// callers get a useful message without parsing output themselves. Higher-level
// orchestration (environment resolution, argv construction, batches) lives in
// internal/dispatch; this package only covers plumbing shared by the git
// wrappers and tooling checks.
package cmd
