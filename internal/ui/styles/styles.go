// Package styles provides shared lipgloss styles for dbx output.
package styles

import "charm.land/lipgloss/v2"

// Colors used across the status tree and tables.
var (
	// Success marks cloned repositories.
	Success = lipgloss.Color("82")

	// Pending marks configured but not yet cloned repositories.
	Pending = lipgloss.Color("244")

	// Warn marks directories no group configures.
	Warn = lipgloss.Color("214")

	// Error is used for failure markers.
	Error = lipgloss.Color("196")

	// Accent highlights group names.
	Accent = lipgloss.Color("62")

	// Muted is used for secondary text like paths and versions.
	Muted = lipgloss.Color("240")
)

// Styles shared by the rendering helpers.
var (
	GroupHeader = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Cloned      = lipgloss.NewStyle().Foreground(Success)
	Available   = lipgloss.NewStyle().Foreground(Pending)
	Unknown     = lipgloss.NewStyle().Foreground(Warn)
	Failed      = lipgloss.NewStyle().Foreground(Error)
	Dim         = lipgloss.NewStyle().Foreground(Muted)
	Bold        = lipgloss.NewStyle().Bold(true)
)
