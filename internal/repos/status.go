package repos

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dbxdev/dbx/internal/config"
)

// State classifies an entry in the status listing.
type State int

const (
	// StateCloned marks a configured repo present on disk.
	StateCloned State = iota
	// StateAvailable marks a configured repo not yet cloned.
	StateAvailable
	// StateUnknown marks a directory on disk that no group configures.
	StateUnknown
)

// Entry is one repository line in the status listing.
type Entry struct {
	Name  string
	State State
}

// GroupListing is the status of one group.
type GroupListing struct {
	Group   string
	Entries []Entry
}

// List builds the status listing: every configured group with its repos
// classified, plus directories found on disk that nothing configures.
// Groups and entries are sorted by name.
func List(cfg *config.Config) []GroupListing {
	base := cfg.ExpandedBaseDir()

	var listings []GroupListing
	for _, group := range cfg.GroupNames() {
		configured := map[string]bool{}
		var entries []Entry
		for _, r := range ForGroup(cfg, group) {
			configured[r.Name] = true
			state := StateAvailable
			if repoAt(filepath.Join(base, group, r.Name)) {
				state = StateCloned
			}
			entries = append(entries, Entry{Name: r.Name, State: state})
		}

		// Directories in the group dir that nothing configures.
		if dirs, err := os.ReadDir(filepath.Join(base, group)); err == nil {
			for _, d := range dirs {
				if !d.IsDir() || configured[d.Name()] || d.Name() == ".venv" {
					continue
				}
				entries = append(entries, Entry{Name: d.Name(), State: StateUnknown})
			}
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		listings = append(listings, GroupListing{Group: group, Entries: entries})
	}
	return listings
}

// repoAt reports whether path is a git working tree.
func repoAt(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}
