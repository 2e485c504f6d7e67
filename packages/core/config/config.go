package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirName is the workspace directory created next to request files.
const DirName = ".purl"

// Workspace is the on-disk purl workspace. It holds named config files and
// the persistent variable store.
type Workspace struct {
	root string
}

// Open returns the workspace rooted under dir. Nothing is created on disk
// until EnsureLayout is called.
func Open(dir string) *Workspace {
	return &Workspace{root: filepath.Join(dir, DirName)}
}

// Discover walks from dir toward the filesystem root looking for an existing
// workspace. When none exists it falls back to dir, so a later EnsureLayout
// creates the workspace there.
func Discover(dir string) *Workspace {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Open(dir)
	}
	for current := abs; ; {
		candidate := filepath.Join(current, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return &Workspace{root: candidate}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return Open(abs)
		}
		current = parent
	}
}

// Root returns the workspace directory itself.
func (w *Workspace) Root() string {
	return w.root
}

// ConfigsDir returns the directory holding named config files.
func (w *Workspace) ConfigsDir() string {
	return filepath.Join(w.root, "configs")
}

// PvarsPath returns the path of the persistent variable database.
func (w *Workspace) PvarsPath() string {
	return filepath.Join(w.root, "pvars.db")
}

// ReportsDir returns the default directory for generated reports.
func (w *Workspace) ReportsDir() string {
	return filepath.Join(w.root, "reports")
}

// Exists reports whether the workspace directory is present on disk.
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.root)
	return err == nil && info.IsDir()
}

// EnsureLayout creates the workspace directories if they are missing.
func (w *Workspace) EnsureLayout() error {
	for _, dir := range []string{w.root, w.ConfigsDir(), w.ReportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating workspace directory %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigPath maps a config name to its file. Names carrying a path separator
// or a YAML extension are treated as literal paths; bare names live under the
// configs directory.
func (w *Workspace) ConfigPath(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return name
	}
	if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
		return name
	}
	if path := filepath.Join(w.ConfigsDir(), name+".yaml"); fileExists(path) {
		return path
	}
	return filepath.Join(w.ConfigsDir(), name+".yml")
}

// LoadConfigs reads the named configs in order. Later names override earlier
// ones when their variables are layered into a store.
func (w *Workspace) LoadConfigs(names []string) ([]map[string]any, error) {
	configs := make([]map[string]any, 0, len(names))
	for _, name := range names {
		vars, err := LoadConfigFile(w.ConfigPath(name))
		if err != nil {
			return nil, fmt.Errorf("config %q: %w", name, err)
		}
		configs = append(configs, vars)
	}
	return configs, nil
}

// LoadConfigFile reads a single config file, a flat YAML mapping of variable
// names to values.
func LoadConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var vars map[string]any
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if vars == nil {
		vars = map[string]any{}
	}
	return vars, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
