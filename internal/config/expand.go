package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand substitutes {base_dir} and {group} in value and expands a leading ~
// to the user's home directory. Unknown {placeholder}s pass through verbatim
// and a ~ anywhere but the first character is left alone. Expansion never
// fails; when the home directory cannot be determined the ~ stays as-is.
func Expand(value, baseDir, group string) string {
	if baseDir != "" {
		value = strings.ReplaceAll(value, "{base_dir}", baseDir)
	}
	if group != "" {
		value = strings.ReplaceAll(value, "{group}", group)
	}

	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			if value == "~" {
				value = home
			} else {
				value = filepath.Join(home, value[2:])
			}
		}
	}
	return value
}

// ExpandEnv expands every value of env with Expand. The input map is not
// modified.
func ExpandEnv(env map[string]string, baseDir, group string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = Expand(v, baseDir, group)
	}
	return out
}
