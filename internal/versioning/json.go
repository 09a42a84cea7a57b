package versioning

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

var _ FileHandler = (*JSONHandler)(nil)

// JSONHandler reads and writes the version in a generic key/value JSON
// document such as package.json.
type JSONHandler struct {
	fs         filesystem.FileSystem
	path       string
	versionKey string
}

func newJSONHandler(fs filesystem.FileSystem, cfg VersionFileConfig) *JSONHandler {
	key := cfg.VersionKey
	if key == "" {
		key = "version"
	}
	return &JSONHandler{fs: fs, path: cfg.Path, versionKey: key}
}

func (h *JSONHandler) ReadVersion() (*models.SemanticVersion, error) {
	if !h.fs.Exists(h.path) {
		return nil, nil
	}

	data, err := h.fs.ReadFile(h.path)
	if err != nil {
		return nil, nil
	}

	doc := make(map[string]interface{})
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil
	}

	raw, ok := getNestedValue(doc, h.versionKey)
	if !ok {
		return nil, nil
	}
	str, ok := raw.(string)
	if !ok || str == "" {
		return nil, nil
	}

	return models.ParseSemanticVersion(str)
}

func (h *JSONHandler) WriteVersion(version *models.SemanticVersion) error {
	if !h.fs.Exists(h.path) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, h.path)
	}

	data, err := h.fs.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", h.path, err)
	}

	doc := make(map[string]interface{})
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", h.path, err)
	}

	if err := setNestedValue(doc, h.versionKey, version.String()); err != nil {
		return fmt.Errorf("failed to set %q in %s: %w", h.versionKey, h.path, err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", h.path, err)
	}
	out = append(out, '\n')

	if err := h.fs.WriteFile(h.path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", h.path, err)
	}

	return nil
}

func (h *JSONHandler) SupportsFile(path string) bool {
	base := filepath.Base(path)
	return filepath.Ext(path) == ".json" || base == "package.json" || base == "composer.json"
}
