package git

import "testing"

func TestRepoNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/billing-api.git", "billing-api"},
		{"https://github.com/acme/billing-api.git", "billing-api"},
		{"https://github.com/acme/billing-api", "billing-api"},
		{"https://github.com/acme/billing-api/", "billing-api"},
		{"billing-api", "billing-api"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := RepoNameFromURL(tt.url); got != tt.want {
				t.Errorf("RepoNameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestOwnerFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/billing-api.git", "acme"},
		{"https://github.com/acme/billing-api.git", "acme"},
		{"https://github.com/acme/billing-api", "acme"},
		{"nonsense", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := OwnerFromURL(tt.url); got != tt.want {
				t.Errorf("OwnerFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestForkURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		owner string
		want  string
	}{
		{
			name:  "ssh form",
			url:   "git@github.com:acme/billing-api.git",
			owner: "alice",
			want:  "git@github.com:alice/billing-api.git",
		},
		{
			name:  "https form",
			url:   "https://github.com/acme/billing-api.git",
			owner: "alice",
			want:  "https://github.com/alice/billing-api.git",
		},
		{
			name:  "repo named like the owner",
			url:   "git@github.com:acme/acme.git",
			owner: "alice",
			want:  "git@github.com:alice/acme.git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ForkURL(tt.url, tt.owner)
			if err != nil {
				t.Fatalf("ForkURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ForkURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForkURLUnrecognized(t *testing.T) {
	t.Parallel()

	if _, err := ForkURL("nonsense", "alice"); err == nil {
		t.Fatal("ForkURL() = nil, want error")
	}
}

func TestWebURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/billing-api.git", "https://github.com/acme/billing-api"},
		{"https://github.com/acme/billing-api.git", "https://github.com/acme/billing-api"},
		{"https://github.com/acme/billing-api", "https://github.com/acme/billing-api"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := WebURL(tt.url); got != tt.want {
				t.Errorf("WebURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
