// Package config loads and validates the dbx configuration.
//
// The configuration lives at ~/.config/dbx/config.toml and describes the
// repository groups (clone URLs, install directories, build commands, test
// environment) plus project scaffolding defaults. Load returns the built-in
// defaults when the file does not exist; a present but invalid file is an
// error.
package config
