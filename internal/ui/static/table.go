// Package static renders non-interactive terminal output: tables and the
// repository status tree.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/dbxdev/dbx/internal/repos"
	"github.com/dbxdev/dbx/internal/ui/styles"
)

// RenderTable renders a borderless table with aligned columns.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	return t.String() + "\n"
}

// marker returns the status glyph for an entry.
func marker(state repos.State) string {
	switch state {
	case repos.StateCloned:
		return styles.Cloned.Render("✓")
	case repos.StateAvailable:
		return styles.Available.Render("○")
	default:
		return styles.Unknown.Render("?")
	}
}

// RenderStatusTree renders the grouped repository listing:
//
//	billing
//	├── ✓ billing-api
//	└── ○ billing-worker
func RenderStatusTree(listings []repos.GroupListing) string {
	var b strings.Builder
	for i, listing := range listings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.GroupHeader.Render(listing.Group))
		b.WriteString("\n")
		for j, entry := range listing.Entries {
			branch := "├── "
			if j == len(listing.Entries)-1 {
				branch = "└── "
			}
			b.WriteString(branch + marker(entry.State) + " " + entry.Name + "\n")
		}
	}
	return b.String()
}
