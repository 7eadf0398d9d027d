// Package git wraps the git CLI for dbx.
//
// Every function shells out to git with an explicit -C <dir> so no chdir is
// ever needed. Errors carry git's own stderr message.
package git
