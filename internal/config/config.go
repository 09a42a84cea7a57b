// Package config loads the [verbump] / [tool.verbump] configuration
// table into validated, enumerated fields. Unknown shapes fail at load
// time instead of being probed defensively at each call site.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/versioning"
)

// configFileCandidates are probed in order when no config file is given.
var configFileCandidates = []string{
	"pyproject.toml",
	"verbump.toml",
	"setup.cfg",
	"package.json",
}

// validFileTypes is the closed set accepted for file_type.
var validFileTypes = map[string]bool{
	"toml":    true,
	"json":    true,
	"generic": true,
}

// entryKeys is the closed set of keys accepted in a version_files table.
var entryKeys = map[string]bool{
	"path":                true,
	"file_type":           true,
	"version_key":         true,
	"version_pattern":     true,
	"version_replacement": true,
	"version_format":      true,
	"encoding":            true,
}

// Config is the loaded tool configuration.
type Config struct {
	// VersionFile is the legacy single-file entry.
	VersionFile string

	// VersionFiles lists the configured version targets, primary first.
	VersionFiles []versioning.VersionFileConfig

	// ChangelogFile overrides the changelog location.
	ChangelogFile string
}

// ManagerConfig converts the loaded config into the versioning layer's
// shape.
func (c *Config) ManagerConfig() versioning.ManagerConfig {
	return versioning.ManagerConfig{
		VersionFile:  c.VersionFile,
		VersionFiles: c.VersionFiles,
	}
}

// FindConfigFile returns the first candidate config file present in dir,
// or "" when none exists.
func FindConfigFile(fs filesystem.FileSystem, dir string) string {
	for _, name := range configFileCandidates {
		path := filepath.Join(dir, name)
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// Load reads the configuration from a TOML file. Non-TOML config files
// (package.json used purely as a version file) yield an empty config.
// Relative paths are resolved against the config file's directory.
func Load(fs filesystem.FileSystem, path string) (*Config, error) {
	cfg := &Config{}

	if filepath.Ext(path) != ".toml" {
		return cfg, nil
	}
	if !fs.Exists(path) {
		return cfg, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	doc := make(map[string]interface{})
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	section := lookupSection(doc)
	if section == nil {
		return cfg, nil
	}

	baseDir := filepath.Dir(path)

	if raw, ok := section["version_file"]; ok {
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("config %s: version_file must be a string", path)
		}
		cfg.VersionFile = resolvePath(str, baseDir)
	}

	if raw, ok := section["version_files"]; ok {
		list, err := asList(raw)
		if err != nil {
			return nil, fmt.Errorf("config %s: version_files %w", path, err)
		}
		for i, item := range list {
			entry, err := parseFileEntry(item, baseDir)
			if err != nil {
				return nil, fmt.Errorf("config %s: version_files[%d]: %w", path, i, err)
			}
			cfg.VersionFiles = append(cfg.VersionFiles, entry)
		}
	}

	if raw, ok := section["changelog_file"]; ok {
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("config %s: changelog_file must be a string", path)
		}
		cfg.ChangelogFile = resolvePath(str, baseDir)
	}

	return cfg, nil
}

// asList normalizes the two list shapes the TOML decoder produces for
// version_files: plain arrays and arrays of tables.
func asList(raw interface{}) ([]interface{}, error) {
	switch value := raw.(type) {
	case []interface{}:
		return value, nil
	case []map[string]interface{}:
		list := make([]interface{}, len(value))
		for i, item := range value {
			list[i] = item
		}
		return list, nil
	default:
		return nil, fmt.Errorf("must be a list")
	}
}

// lookupSection finds the tool table, preferring [verbump] over
// [tool.verbump].
func lookupSection(doc map[string]interface{}) map[string]interface{} {
	if section, ok := doc["verbump"].(map[string]interface{}); ok {
		return section
	}
	if tool, ok := doc["tool"].(map[string]interface{}); ok {
		if section, ok := tool["verbump"].(map[string]interface{}); ok {
			return section
		}
	}
	return nil
}

// parseFileEntry accepts a plain path string or a full target table.
func parseFileEntry(item interface{}, baseDir string) (versioning.VersionFileConfig, error) {
	switch value := item.(type) {
	case string:
		return versioning.VersionFileConfig{Path: resolvePath(value, baseDir)}, nil

	case map[string]interface{}:
		for key := range value {
			if !entryKeys[key] {
				return versioning.VersionFileConfig{}, fmt.Errorf("unknown key %q", key)
			}
		}

		entry := versioning.VersionFileConfig{
			Path:               stringField(value, "path"),
			FileType:           stringField(value, "file_type"),
			VersionKey:         stringField(value, "version_key"),
			VersionPattern:     stringField(value, "version_pattern"),
			VersionReplacement: stringField(value, "version_replacement"),
			VersionFormat:      stringField(value, "version_format"),
			Encoding:           stringField(value, "encoding"),
		}
		if entry.Path == "" {
			return versioning.VersionFileConfig{}, fmt.Errorf("missing path")
		}
		if entry.FileType != "" && !validFileTypes[entry.FileType] {
			return versioning.VersionFileConfig{}, fmt.Errorf("invalid file_type %q (must be toml, json, or generic)", entry.FileType)
		}
		entry.Path = resolvePath(entry.Path, baseDir)
		return entry, nil

	default:
		return versioning.VersionFileConfig{}, fmt.Errorf("must be a path string or a table")
	}
}

func stringField(table map[string]interface{}, key string) string {
	if raw, ok := table[key]; ok {
		if str, ok := raw.(string); ok {
			return str
		}
	}
	return ""
}

func resolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
