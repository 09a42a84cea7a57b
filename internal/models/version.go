package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidVersion means no major.minor.patch core could be extracted
// from the input text.
var ErrInvalidVersion = errors.New("no semantic version found")

// versionPattern locates a major.minor.patch core with optional
// prerelease and build tags anywhere inside the text, bounded by
// non-digit characters. The surrounding text becomes the prefix/suffix
// of the preserved format template.
var versionPattern = regexp.MustCompile(
	`(?:^|[^\d])(\d+)\.(\d+)\.(\d+)(?:-([a-zA-Z0-9\-]+))?(?:\+([a-zA-Z0-9\-.]+))?(?:[^\d]|$)`,
)

var bareVersionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// SemanticVersion holds a parsed semantic version together with the
// original textual decoration it was found in, so that bump-and-rewrite
// round-trips reproduce the source formatting.
type SemanticVersion struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string

	// originalFormat is a template like "v{major}.{minor}.{patch}";
	// empty when the input carried no prefix or suffix.
	originalFormat string
}

// ParseSemanticVersion extracts a version from arbitrary text. The
// search is lenient: the numeric core may be embedded inside prefix and
// suffix text ("release-1.2.3-final"), both of which are preserved for
// re-serialization.
func ParseSemanticVersion(text string) (*SemanticVersion, error) {
	if idx := versionPattern.FindStringSubmatchIndex(text); idx != nil {
		return versionFromMatch(text, idx), nil
	}

	// Fallback for bare v-prefixed versions the general pattern missed.
	clean := strings.TrimLeft(text, "vV")
	prefix := text[:len(text)-len(clean)]
	if m := bareVersionPattern.FindStringSubmatch(clean); m != nil {
		v := &SemanticVersion{
			Major: mustAtoi(m[1]),
			Minor: mustAtoi(m[2]),
			Patch: mustAtoi(m[3]),
		}
		if prefix != "" {
			v.originalFormat = prefix + "{major}.{minor}.{patch}"
		}
		return v, nil
	}

	return nil, fmt.Errorf("%w in %q", ErrInvalidVersion, text)
}

func versionFromMatch(text string, idx []int) *SemanticVersion {
	group := func(n int) string {
		if idx[2*n] < 0 {
			return ""
		}
		return text[idx[2*n]:idx[2*n+1]]
	}

	v := &SemanticVersion{
		Major:      mustAtoi(group(1)),
		Minor:      mustAtoi(group(2)),
		Patch:      mustAtoi(group(3)),
		Prerelease: normalizePrerelease(group(4)),
		Build:      group(5),
	}

	prefix := text[:idx[2*1]]
	coreEnd := idx[2*3+1]
	if group(5) != "" {
		coreEnd = idx[2*5+1]
	} else if group(4) != "" {
		coreEnd = idx[2*4+1]
	}
	suffix := text[coreEnd:]

	if prefix != "" || suffix != "" {
		tmpl := prefix + "{major}.{minor}.{patch}"
		if v.Prerelease != "" {
			tmpl += "-{prerelease}"
		}
		if v.Build != "" {
			tmpl += "+{build}"
		}
		v.originalFormat = tmpl + suffix
	}

	return v
}

// normalizePrerelease maps the single-letter short tags to their long
// form; everything else passes through untouched.
func normalizePrerelease(tag string) string {
	switch tag {
	case "a":
		return "alpha"
	case "b":
		return "beta"
	default:
		return tag
	}
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// FromComponents builds a SemanticVersion from explicit parts.
func FromComponents(major, minor, patch int, prerelease, build, originalFormat string) *SemanticVersion {
	return &SemanticVersion{
		Major:          major,
		Minor:          minor,
		Patch:          patch,
		Prerelease:     prerelease,
		Build:          build,
		originalFormat: originalFormat,
	}
}

// ParseComponents builds a SemanticVersion from captured string parts:
// (major, minor, patch) or (major, minor, patch, prerelease).
func ParseComponents(parts []string, originalFormat string) (*SemanticVersion, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: need at least (major, minor, patch), got %d parts", ErrInvalidVersion, len(parts))
	}

	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("%w: component %q is not numeric", ErrInvalidVersion, parts[i])
		}
		nums[i] = n
	}

	var prerelease string
	if len(parts) > 3 {
		prerelease = parts[3]
	}

	return FromComponents(nums[0], nums[1], nums[2], prerelease, "", originalFormat), nil
}

// core renders the bare major.minor.patch[-prerelease][+build] form.
func (v *SemanticVersion) core() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// String renders the version through the preserved original format when
// one exists, and through the standard semver form otherwise.
func (v *SemanticVersion) String() string {
	if v.originalFormat != "" {
		return v.FormatWithTemplate(v.originalFormat)
	}
	return v.core()
}

// OriginalFormat exposes the preserved template; empty when the source
// text carried no decoration.
func (v *SemanticVersion) OriginalFormat() string {
	return v.originalFormat
}

// Bump returns a new version with the numeric transition applied. The
// receiver is never mutated. Bumping major resets minor and patch;
// bumping minor resets patch. Build metadata and the preserved format
// template carry over; the prerelease label is replaced by the argument
// (or dropped when empty).
func (v *SemanticVersion) Bump(bumpType BumpType, prerelease string) *SemanticVersion {
	major, minor, patch := v.Major, v.Minor, v.Patch

	switch bumpType {
	case BumpMajor:
		major++
		minor = 0
		patch = 0
	case BumpMinor:
		minor++
		patch = 0
	case BumpPatch:
		patch++
	}

	return FromComponents(major, minor, patch, prerelease, v.Build, v.originalFormat)
}

// FormatWithTemplate substitutes named placeholders into a template.
// Date placeholders are evaluated at call time.
//
// Supported: {version} {major} {minor} {patch} {major_padded}
// {minor_padded} {patch_padded} {prerelease} {build} {date} {year}
// {month} {day} {timestamp}.
func (v *SemanticVersion) FormatWithTemplate(template string) string {
	now := time.Now()

	replacer := strings.NewReplacer(
		"{version}", v.core(),
		"{major_padded}", fmt.Sprintf("%03d", v.Major),
		"{minor_padded}", fmt.Sprintf("%03d", v.Minor),
		"{patch_padded}", fmt.Sprintf("%03d", v.Patch),
		"{major}", strconv.Itoa(v.Major),
		"{minor}", strconv.Itoa(v.Minor),
		"{patch}", strconv.Itoa(v.Patch),
		"{prerelease}", v.Prerelease,
		"{build}", v.Build,
		"{date}", now.Format("2006-01-02"),
		"{year}", now.Format("2006"),
		"{month}", now.Format("01"),
		"{day}", now.Format("02"),
		"{timestamp}", strconv.FormatInt(now.Unix(), 10),
	)

	return replacer.Replace(template)
}
