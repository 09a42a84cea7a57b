package versioning

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

// Errors surfaced by file handlers. Reads of missing or malformed files
// return no version instead of failing; writes are strict.
var (
	ErrFileNotFound    = errors.New("version file does not exist")
	ErrNoMatch         = errors.New("version pattern matched nothing")
	ErrUnknownFileType = errors.New("unknown version file type")
)

// FileHandler reads and writes a version value against one file of a
// given shape. Implementations are stateless apart from remembering
// where a version was found so writes target the same location.
type FileHandler interface {
	// ReadVersion returns (nil, nil) when the file is missing, malformed
	// or carries no version under the configured keys.
	ReadVersion() (*models.SemanticVersion, error)

	// WriteVersion rewrites the version in place. The file must exist.
	WriteVersion(version *models.SemanticVersion) error

	// SupportsFile reports whether this handler shape fits the path.
	SupportsFile(path string) bool
}

// NewFileHandler builds the handler for a configured version file.
// An explicit FileType wins; otherwise the shape is selected from the
// filename. Unknown explicit types are a configuration error and
// propagate immediately.
func NewFileHandler(fs filesystem.FileSystem, cfg VersionFileConfig) (FileHandler, error) {
	switch strings.ToLower(cfg.FileType) {
	case "toml":
		return newTOMLHandler(fs, cfg), nil
	case "json":
		return newJSONHandler(fs, cfg), nil
	case "generic":
		return newGenericHandler(fs, cfg)
	case "":
		// Fall through to filename detection.
	default:
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownFileType, cfg.FileType, cfg.Path)
	}

	name := filepath.Base(cfg.Path)
	switch {
	case filepath.Ext(cfg.Path) == ".toml" || name == "pyproject.toml" || name == "Pipfile":
		return newTOMLHandler(fs, cfg), nil
	case filepath.Ext(cfg.Path) == ".json" || name == "package.json" || name == "composer.json":
		return newJSONHandler(fs, cfg), nil
	default:
		return newGenericHandler(fs, cfg)
	}
}

// getNestedValue walks a dotted key path through nested maps.
func getNestedValue(data map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setNestedValue sets a dotted key path, creating intermediate tables as
// needed.
func setNestedValue(data map[string]interface{}, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			child := make(map[string]interface{})
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("key %q is not a table", part)
		}
		current = child
	}
	current[parts[len(parts)-1]] = value
	return nil
}
