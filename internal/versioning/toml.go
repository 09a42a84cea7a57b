package versioning

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

var _ FileHandler = (*TOMLHandler)(nil)

// defaultTOMLKeys are the dotted key paths probed in order when no
// explicit version_key is configured.
var defaultTOMLKeys = []string{
	"project.version",
	"verbump.version",
	"tool.verbump.version",
}

// TOMLHandler reads and writes the version in a TOML document such as
// pyproject.toml.
type TOMLHandler struct {
	fs          filesystem.FileSystem
	path        string
	versionKeys []string

	// foundKey remembers where a read located the version so the write
	// targets the same table.
	foundKey string
}

func newTOMLHandler(fs filesystem.FileSystem, cfg VersionFileConfig) *TOMLHandler {
	keys := defaultTOMLKeys
	if cfg.VersionKey != "" {
		keys = []string{cfg.VersionKey}
	}
	return &TOMLHandler{fs: fs, path: cfg.Path, versionKeys: keys}
}

func (h *TOMLHandler) ReadVersion() (*models.SemanticVersion, error) {
	if !h.fs.Exists(h.path) {
		return nil, nil
	}

	data, err := h.fs.ReadFile(h.path)
	if err != nil {
		return nil, nil
	}

	doc := make(map[string]interface{})
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, nil
	}

	for _, key := range h.versionKeys {
		raw, ok := getNestedValue(doc, key)
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok || str == "" {
			continue
		}
		h.foundKey = key
		return models.ParseSemanticVersion(str)
	}

	return nil, nil
}

func (h *TOMLHandler) WriteVersion(version *models.SemanticVersion) error {
	if !h.fs.Exists(h.path) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, h.path)
	}

	data, err := h.fs.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", h.path, err)
	}

	doc := make(map[string]interface{})
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", h.path, err)
	}

	key := h.foundKey
	if key == "" {
		key = h.versionKeys[0]
	}
	if err := setNestedValue(doc, key, version.String()); err != nil {
		return fmt.Errorf("failed to set %q in %s: %w", key, h.path, err)
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", h.path, err)
	}

	if err := h.fs.WriteFile(h.path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", h.path, err)
	}

	return nil
}

func (h *TOMLHandler) SupportsFile(path string) bool {
	base := filepath.Base(path)
	return filepath.Ext(path) == ".toml" || base == "pyproject.toml" || base == "Pipfile"
}
