package versioning

import (
	"fmt"
	"os"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

// defaultVersionFile is the legacy single-file fallback.
const defaultVersionFile = "pyproject.toml"

// VersionFileConfig describes one configured version file target. It is
// an immutable value supplied by the configuration loader.
type VersionFileConfig struct {
	Path               string
	FileType           string
	VersionKey         string
	VersionPattern     string
	VersionReplacement string
	VersionFormat      string
	Encoding           string
}

// ManagerConfig is the version-files portion of the tool configuration:
// either a list of targets or the legacy single version_file entry.
type ManagerConfig struct {
	VersionFile  string
	VersionFiles []VersionFileConfig
}

// VersionManager orchestrates reads and writes across every configured
// version file. The first configured file is the primary source of
// truth for the current version.
type VersionManager struct {
	fs       filesystem.FileSystem
	configs  []VersionFileConfig
	handlers map[string]FileHandler

	// Warnf receives per-file read/write failures. Callers route it to
	// their own output (CLI writer, hook log); defaults to stderr.
	Warnf func(format string, args ...interface{})
}

// NewVersionManager builds handlers for each target eagerly. A handler
// construction failure is a setup bug, not a runtime I/O fluke, and
// propagates immediately.
func NewVersionManager(fs filesystem.FileSystem, configs []VersionFileConfig) (*VersionManager, error) {
	handlers := make(map[string]FileHandler, len(configs))
	for _, cfg := range configs {
		handler, err := NewFileHandler(fs, cfg)
		if err != nil {
			return nil, err
		}
		handlers[cfg.Path] = handler
	}

	return &VersionManager{
		fs:       fs,
		configs:  configs,
		handlers: handlers,
		Warnf: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}, nil
}

func (m *VersionManager) warn(format string, args ...interface{}) {
	if m.Warnf != nil {
		m.Warnf(format, args...)
	}
}

// ManagerFromConfig builds a VersionManager from the configured targets,
// falling back to the legacy single version_file entry when no
// version_files list is present.
func ManagerFromConfig(fs filesystem.FileSystem, cfg ManagerConfig) (*VersionManager, error) {
	configs := cfg.VersionFiles
	if len(configs) == 0 {
		path := cfg.VersionFile
		if path == "" {
			path = defaultVersionFile
		}
		configs = []VersionFileConfig{{Path: path}}
	}
	return NewVersionManager(fs, configs)
}

// Paths returns the configured file paths in order.
func (m *VersionManager) Paths() []string {
	paths := make([]string, len(m.configs))
	for i, cfg := range m.configs {
		paths[i] = cfg.Path
	}
	return paths
}

// ReadVersions reads every configured file independently. A failure on
// one file is recorded as nil for that path and never aborts the rest.
func (m *VersionManager) ReadVersions() map[string]*models.SemanticVersion {
	versions := make(map[string]*models.SemanticVersion, len(m.configs))
	for _, cfg := range m.configs {
		version, err := m.handlers[cfg.Path].ReadVersion()
		if err != nil {
			m.warn("Warning: could not read version from %s: %v", cfg.Path, err)
			versions[cfg.Path] = nil
			continue
		}
		versions[cfg.Path] = version
	}
	return versions
}

// WriteVersions writes the version to every configured file
// independently and returns the paths that succeeded. Partial failure is
// reported, not fatal; callers detect it from the returned list.
func (m *VersionManager) WriteVersions(version *models.SemanticVersion) []string {
	var updated []string
	for _, cfg := range m.configs {
		if err := m.handlers[cfg.Path].WriteVersion(version); err != nil {
			m.warn("Warning: could not write version to %s: %v", cfg.Path, err)
			continue
		}
		updated = append(updated, cfg.Path)
	}
	return updated
}

// GetPrimaryVersion reads only the first configured file.
func (m *VersionManager) GetPrimaryVersion() (*models.SemanticVersion, error) {
	if len(m.configs) == 0 {
		return nil, nil
	}
	return m.handlers[m.configs[0].Path].ReadVersion()
}

// ValidateVersionConsistency is true when at most one distinct version
// rendering exists among all successfully read files; vacuously true
// when nothing reads.
func (m *VersionManager) ValidateVersionConsistency() bool {
	var first string
	seen := false
	for _, version := range m.ReadVersions() {
		if version == nil {
			continue
		}
		rendered := version.String()
		if !seen {
			first = rendered
			seen = true
			continue
		}
		if rendered != first {
			return false
		}
	}
	return true
}
