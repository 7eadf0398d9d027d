package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Group describes one repository group.
//
// The per-repo settings (install_dirs, build_commands, test_runner,
// default_branch) are tables keyed by repository name, so a group can hold a
// monorepo with subdirectory packages next to ordinary repos without the
// settings bleeding across.
type Group struct {
	// Repos lists clone URLs for the group's repositories.
	Repos []string `toml:"repos"`

	// InstallDirs maps repo name to the directories (relative to the repo
	// root) holding installable packages. A repo without an entry installs
	// from its root.
	InstallDirs map[string][]string `toml:"install_dirs"`

	// BuildCommands maps repo name to commands run in the repo root before
	// installation.
	BuildCommands map[string][]string `toml:"build_commands"`

	// TestRunner maps repo name to a script path (relative to the repo root)
	// that replaces pytest for that repo.
	TestRunner map[string]string `toml:"test_runner"`

	// DefaultBranch maps repo name to the branch switched to after cloning.
	DefaultBranch map[string]string `toml:"default_branch"`

	// TestEnv holds extra environment variables applied to test and just
	// invocations. Values may contain {base_dir}, {group} and a leading ~.
	TestEnv map[string]string `toml:"test_env"`

	// DependencyGroups are installed with "uv pip install --group".
	DependencyGroups []string `toml:"dependency_groups"`
}

// InstallDirsFor returns the install directories for a repo, defaulting to
// the repo root.
func (g Group) InstallDirsFor(repo string) []string {
	if dirs := g.InstallDirs[repo]; len(dirs) > 0 {
		return dirs
	}
	return []string{"."}
}

// BuildCommandsFor returns the build commands for a repo, nil when none are
// configured.
func (g Group) BuildCommandsFor(repo string) []string {
	return g.BuildCommands[repo]
}

// TestRunnerFor returns the repo's custom test runner, "" for pytest.
func (g Group) TestRunnerFor(repo string) string {
	return g.TestRunner[repo]
}

// DefaultBranchFor returns the branch to switch to after cloning the repo,
// "" when the clone should stay where it is.
func (g Group) DefaultBranchFor(repo string) string {
	return g.DefaultBranch[repo]
}

// Project holds the Django scaffolding defaults.
type Project struct {
	// Dir is the directory under base_dir holding scaffolded projects.
	Dir string `toml:"dir"`

	// PythonVersion is passed to "uv venv --python" when creating project venvs.
	PythonVersion string `toml:"python_version"`

	// DefaultEnv is merged into every project command's environment.
	DefaultEnv map[string]string `toml:"default_env"`
}

// Config is the top-level dbx configuration.
type Config struct {
	// BaseDir is the root under which groups are cloned.
	BaseDir string `toml:"base_dir"`

	// GlobalGroups lists groups whose repos are available to every group.
	GlobalGroups []string `toml:"global_groups"`

	// Groups maps group name to group settings.
	Groups map[string]Group `toml:"groups"`

	// Project holds scaffolding defaults.
	Project Project `toml:"project"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseDir: "~/dev",
		Groups:  map[string]Group{},
		Project: Project{Dir: "projects"},
	}
}

// Path returns the config file location, honoring DBX_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("DBX_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dbx", "config.toml"), nil
}

// Load reads the configuration from path. A missing file yields Default();
// an unreadable or invalid file is an error naming the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ExpandedBaseDir returns BaseDir with a leading ~ expanded.
func (c *Config) ExpandedBaseDir() string {
	return Expand(c.BaseDir, "", "")
}

// ProjectsDir returns the absolute scaffolded-projects directory.
func (c *Config) ProjectsDir() string {
	dir := c.Project.Dir
	if dir == "" {
		dir = "projects"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ExpandedBaseDir(), dir)
}

// GroupNames returns the configured group names, sorted.
func (c *Config) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for name := range c.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base_dir must not be empty")
	}
	for _, g := range c.GlobalGroups {
		if _, ok := c.Groups[g]; !ok {
			return fmt.Errorf("global_groups names unknown group %q", g)
		}
	}
	for name, group := range c.Groups {
		for _, url := range group.Repos {
			if strings.TrimSpace(url) == "" {
				return fmt.Errorf("group %q: empty repo URL", name)
			}
		}
	}
	return nil
}

const defaultConfigTemplate = `# dbx configuration
#
# base_dir is the root under which groups are cloned:
#   <base_dir>/<group>/<repo>
base_dir = "%s"

# Groups listed here are available to every other group.
global_groups = []

# [groups.example]
# repos = ["git@github.com:acme/example.git"]
# dependency_groups = ["dev"]
#
# Per-repo settings are tables keyed by repository name.
# [groups.example.install_dirs]
# example = ["libs/core", "libs/cli"]
#
# [groups.example.test_runner]
# example = "scripts/run_tests.py"
#
# [groups.example.default_branch]
# example = "main"
#
# [groups.example.test_env]
# DATA_DIR = "{base_dir}/{group}/data"

[project]
dir = "projects"

[project.default_env]
`

// Init writes the default config file to path. Refuses to overwrite an
// existing file unless force is set.
func Init(path, baseDir string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if baseDir == "" {
		baseDir = "~/dev"
	}
	content := fmt.Sprintf(defaultConfigTemplate, baseDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
