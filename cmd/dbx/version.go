package main

import "fmt"

// Set via ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionString() string {
	return fmt.Sprintf("dbx %s (%s, %s)", version, commit[:min(7, len(commit))], date)
}
