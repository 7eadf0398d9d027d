package project

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dbxdev/dbx/internal/config"
)

// encryption library variables from default_env. The *_LIB file paths are
// only applied when the file actually exists; the search-path variables are
// set regardless.
var cryptFileVars = []string{"PYMONGOCRYPT_LIB", "CRYPT_SHARED_LIB_PATH"}
var cryptPathVars = []string{"DYLD_LIBRARY_PATH", "LD_LIBRARY_PATH"}

// ApplyDefaultEnv augments env with the configured default_env: the default
// MONGODB_URI, the derived DB_IP/DB_PORT pair and the encryption library
// paths. A variable already present in env or in the process environment is
// never overridden. The map is modified in place.
func ApplyDefaultEnv(env map[string]string, defaultEnv map[string]string) {
	set := func(key string) bool {
		if _, ok := env[key]; ok {
			return true
		}
		_, ok := os.LookupEnv(key)
		return ok
	}

	if !set("MONGODB_URI") {
		if uri := defaultEnv["MONGODB_URI"]; uri != "" {
			env["MONGODB_URI"] = uri
		}
	}

	// The pymongo test suite addresses the server via DB_IP/DB_PORT rather
	// than MONGODB_URI.
	if uri := effective(env, "MONGODB_URI"); uri != "" && !set("DB_IP") {
		if host, port, ok := mongoAddr(uri); ok {
			env["DB_IP"] = host
			env["DB_PORT"] = port
		}
	}

	for _, key := range cryptFileVars {
		if set(key) {
			continue
		}
		if value := config.Expand(defaultEnv[key], "", ""); value != "" {
			if _, err := os.Stat(value); err == nil {
				env[key] = value
			}
		}
	}
	for _, key := range cryptPathVars {
		if set(key) {
			continue
		}
		if value := config.Expand(defaultEnv[key], "", ""); value != "" {
			env[key] = value
		}
	}
}

// effective returns env[key], falling back to the process environment.
func effective(env map[string]string, key string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// mongoAddr extracts host and port from a mongodb:// URI. The port defaults
// to 27017.
func mongoAddr(uri string) (host, port string, ok bool) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Hostname() == "" {
		return "", "", false
	}
	port = parsed.Port()
	if port == "" {
		port = "27017"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", "", false
	}
	return parsed.Hostname(), port, true
}

// DjangoEnv returns the variables a Django management command needs:
// DJANGO_SETTINGS_MODULE pointing at the chosen settings module and
// PYTHONPATH with the project directory prepended. settingsModule defaults
// to the project's own name.
func (p Project) DjangoEnv(settingsModule string) map[string]string {
	if settingsModule == "" {
		settingsModule = p.Name
	}
	pythonPath := p.Path
	if existing := os.Getenv("PYTHONPATH"); existing != "" {
		pythonPath += string(os.PathListSeparator) + existing
	}
	return map[string]string{
		"DJANGO_SETTINGS_MODULE": p.Name + ".settings." + settingsModule,
		"PYTHONPATH":             pythonPath,
	}
}

// FrontendPath returns the project's frontend directory.
func (p Project) FrontendPath() string {
	return filepath.Join(p.Path, "frontend")
}
