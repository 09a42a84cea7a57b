package changelog

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/verbump/verbump/internal/filesystem"
)

// sidecarName is the optional changelog configuration file, markdown
// with YAML frontmatter: metadata in the frontmatter, the header
// template as the body.
const sidecarName = "changelog.md"

type sidecarMeta struct {
	RepoURL         string   `yaml:"repo_url"`
	UnreleasedLabel string   `yaml:"unreleased_label"`
	SkipTypes       []string `yaml:"skip_types"`
}

// FindSidecar walks up from start looking for .verbump/changelog.md.
func FindSidecar(fs filesystem.FileSystem, start string) string {
	dir := start
	for {
		path := filepath.Join(dir, ".verbump", sidecarName)
		if fs.Exists(path) {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadSidecarConfig merges a sidecar file into the default config. A
// missing sidecar yields the defaults.
func LoadSidecarConfig(fs filesystem.FileSystem, start string) (Config, error) {
	config := NewConfig()

	path := FindSidecar(fs, start)
	if path == "" {
		return config, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var meta sidecarMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if meta.RepoURL != "" {
		config.RepoURL = meta.RepoURL
	}
	if meta.UnreleasedLabel != "" {
		config.UnreleasedLabel = meta.UnreleasedLabel
	}
	if len(meta.SkipTypes) > 0 {
		config.SkipTypes = meta.SkipTypes
	}
	if template := strings.TrimSpace(string(body)); template != "" {
		config.HeaderTemplate = template
	}

	return config, nil
}
