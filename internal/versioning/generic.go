package versioning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

var _ FileHandler = (*GenericHandler)(nil)

const (
	defaultVersionPattern     = `version["\s]*[=:]["\s]*([^\s"']+)`
	defaultVersionReplacement = `version = "{version}"`
)

// GenericHandler rewrites versions in arbitrary text files through a
// configured regex and replacement template. It is the fallback when no
// structured handler fits.
type GenericHandler struct {
	fs          filesystem.FileSystem
	path        string
	pattern     *regexp.Regexp
	replacement string
	format      string
}

func newGenericHandler(fs filesystem.FileSystem, cfg VersionFileConfig) (*GenericHandler, error) {
	patternText := cfg.VersionPattern
	if patternText == "" {
		patternText = defaultVersionPattern
	}
	replacement := cfg.VersionReplacement
	if replacement == "" {
		replacement = defaultVersionReplacement
	}

	pattern, err := regexp.Compile("(?m)" + patternText)
	if err != nil {
		return nil, fmt.Errorf("invalid version_pattern for %s: %w", cfg.Path, err)
	}

	return &GenericHandler{
		fs:          fs,
		path:        cfg.Path,
		pattern:     pattern,
		replacement: replacement,
		format:      cfg.VersionFormat,
	}, nil
}

// ReadVersion extracts a version using the configured pattern. Patterns
// with three or more all-numeric leading groups are treated as component
// captures (major, minor, patch[, prerelease]); single- and double-group
// patterns capture the full version substring.
func (h *GenericHandler) ReadVersion() (*models.SemanticVersion, error) {
	if !h.fs.Exists(h.path) {
		return nil, nil
	}

	data, err := h.fs.ReadFile(h.path)
	if err != nil {
		return nil, nil
	}

	match := h.pattern.FindStringSubmatch(string(data))
	if match == nil {
		return nil, nil
	}
	groups := match[1:]

	if len(groups) >= 3 {
		if allNumeric(groups[:3]) {
			return models.ParseComponents(groups, h.format)
		}
		return h.versionFromMixedGroups(groups)
	}

	versionStr := groups[0]
	if len(groups) >= 2 {
		versionStr = groups[1]
	}
	return models.ParseSemanticVersion(versionStr)
}

// versionFromMixedGroups picks the version substring out of 3+ capture
// groups that are not plain numeric components. The scan prefers a group
// free of quote/hash/colon/equals characters, then falls back to the
// second group, then the first. The selection order is pattern-dependent
// and kept as-is for compatibility with existing configurations.
func (h *GenericHandler) versionFromMixedGroups(groups []string) (*models.SemanticVersion, error) {
	for _, group := range groups {
		if group == "" || strings.ContainsAny(group, `"'#=:`) {
			continue
		}
		if v, err := models.ParseSemanticVersion(group); err == nil {
			return v, nil
		}
	}
	if len(groups) >= 2 {
		return models.ParseSemanticVersion(groups[1])
	}
	return models.ParseSemanticVersion(groups[0])
}

func allNumeric(groups []string) bool {
	for _, g := range groups {
		if _, err := strconv.Atoi(g); err != nil {
			return false
		}
	}
	return true
}

// WriteVersion applies the regex substitution with the rendered
// replacement template. Unchanged content means the pattern never
// matched, which is an error for this file.
func (h *GenericHandler) WriteVersion(version *models.SemanticVersion) error {
	if !h.fs.Exists(h.path) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, h.path)
	}

	data, err := h.fs.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", h.path, err)
	}
	content := string(data)

	replacementText := version.FormatWithTemplate(h.replacement)
	newContent := h.pattern.ReplaceAllString(content, replacementText)

	if newContent == content {
		return fmt.Errorf("%w in %s", ErrNoMatch, h.path)
	}

	if err := h.fs.WriteFile(h.path, []byte(newContent), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", h.path, err)
	}

	return nil
}

// SupportsFile always returns true; the generic handler is the fallback.
func (h *GenericHandler) SupportsFile(string) bool {
	return true
}
