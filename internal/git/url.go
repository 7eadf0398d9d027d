package git

import (
	"fmt"
	"strings"
)

// RepoNameFromURL extracts the repository name from a clone URL.
// Handles SSH (git@github.com:org/repo.git) and HTTPS forms.
func RepoNameFromURL(url string) string {
	name := strings.TrimSuffix(url, "/")
	name = strings.TrimSuffix(name, ".git")
	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// OwnerFromURL extracts the owner (user or organization) from a GitHub
// clone URL, or "" when the URL has no recognizable owner segment.
func OwnerFromURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	var path string
	switch {
	case strings.HasPrefix(trimmed, "git@"):
		_, path, _ = strings.Cut(trimmed, ":")
	case strings.Contains(trimmed, "://"):
		_, rest, _ := strings.Cut(trimmed, "://")
		_, path, _ = strings.Cut(rest, "/")
	default:
		return ""
	}
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// ForkURL rewrites the owner segment of a GitHub clone URL, preserving the
// SSH or HTTPS form. Used by the fork workflow: the fork is cloned as origin
// and the original URL becomes the upstream remote.
func ForkURL(url, owner string) (string, error) {
	original := OwnerFromURL(url)
	if original == "" {
		return "", fmt.Errorf("cannot determine owner of %q", url)
	}
	// Replace only the owner path segment, not a same-named repo.
	if strings.HasPrefix(url, "git@") {
		return strings.Replace(url, ":"+original+"/", ":"+owner+"/", 1), nil
	}
	return strings.Replace(url, "/"+original+"/", "/"+owner+"/", 1), nil
}

// WebURL converts a clone URL to a browsable https URL.
func WebURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if strings.HasPrefix(trimmed, "git@") {
		rest := strings.TrimPrefix(trimmed, "git@")
		host, path, ok := strings.Cut(rest, ":")
		if !ok {
			return trimmed
		}
		return "https://" + host + "/" + path
	}
	return trimmed
}
