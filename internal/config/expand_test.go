package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpand(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		value   string
		baseDir string
		group   string
		want    string
	}{
		{
			name:  "plain value untouched",
			value: "DEBUG=1",
			want:  "DEBUG=1",
		},
		{
			name:    "base_dir placeholder",
			value:   "{base_dir}/data",
			baseDir: "/srv/dev",
			want:    "/srv/dev/data",
		},
		{
			name:    "group placeholder",
			value:   "{base_dir}/{group}/fixtures",
			baseDir: "/srv/dev",
			group:   "billing",
			want:    "/srv/dev/billing/fixtures",
		},
		{
			name:    "unknown placeholder passes through",
			value:   "{base_dir}/{unknown}",
			baseDir: "/srv/dev",
			want:    "/srv/dev/{unknown}",
		},
		{
			name:  "leading tilde",
			value: "~/data",
			want:  filepath.Join(home, "data"),
		},
		{
			name:  "bare tilde",
			value: "~",
			want:  home,
		},
		{
			name:  "interior tilde untouched",
			value: "/opt/~cache",
			want:  "/opt/~cache",
		},
		{
			name:  "tilde user form untouched",
			value: "~bob/data",
			want:  "~bob/data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Expand(tt.value, tt.baseDir, tt.group)
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestExpandIdempotent(t *testing.T) {
	t.Parallel()

	// An already-expanded value must not change on a second pass.
	once := Expand("{base_dir}/{group}/data", "/srv/dev", "billing")
	twice := Expand(once, "/srv/dev", "billing")
	if once != twice {
		t.Errorf("second Expand changed value: %q -> %q", once, twice)
	}
}

func TestExpandEnvDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := map[string]string{"DATA": "{base_dir}/d"}
	out := ExpandEnv(in, "/srv", "g")
	if in["DATA"] != "{base_dir}/d" {
		t.Error("ExpandEnv mutated its input")
	}
	if out["DATA"] != "/srv/d" {
		t.Errorf("ExpandEnv result = %q, want %q", out["DATA"], "/srv/d")
	}
}
