// Package changelog maintains CHANGELOG.md files in the Keep a
// Changelog format, fed by parsed conventional commits.
package changelog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/models"
)

// DefaultHeader is the Keep a Changelog preamble written to fresh files.
const DefaultHeader = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).
`

// Section pairs a grouping key (a commit type, or "breaking") with its
// rendered heading. Order is render order.
type Section struct {
	Key   string
	Title string
}

// DefaultSections lists the rendered groups. Commit types without an
// entry here (build, ci) are collected but never rendered.
var DefaultSections = []Section{
	{"breaking", "⚠ BREAKING CHANGES"},
	{"feat", "✨ Features"},
	{"fix", "🐛 Bug Fixes"},
	{"docs", "📚 Documentation"},
	{"style", "💎 Style"},
	{"refactor", "♻️ Refactor"},
	{"perf", "⚡ Performance"},
	{"test", "🧪 Tests"},
	{"chore", "🔧 Chore"},
}

// Config controls formatting and content of the changelog.
type Config struct {
	Sections        []Section
	SkipTypes       []string
	RepoURL         string
	UnreleasedLabel string
	HeaderTemplate  string
}

// NewConfig applies defaults for unset fields.
func NewConfig() Config {
	return Config{
		Sections:        DefaultSections,
		UnreleasedLabel: "Unreleased",
		HeaderTemplate:  DefaultHeader,
	}
}

func (c *Config) normalize() {
	if len(c.Sections) == 0 {
		c.Sections = DefaultSections
	}
	if c.UnreleasedLabel == "" {
		c.UnreleasedLabel = "Unreleased"
	}
	if c.HeaderTemplate == "" {
		c.HeaderTemplate = DefaultHeader
	}
}

var versionHeaderPattern = regexp.MustCompile(`^## \[([^\]]+)\]( - (\d{4}-\d{2}-\d{2}))?`)

// VersionSection is a previously-released block of changelog lines.
type VersionSection struct {
	Version string
	Lines   []string
}

// Manager renders and updates the changelog document.
type Manager struct {
	fs     filesystem.FileSystem
	config Config
}

// NewManager creates a Manager; zero-value config fields get defaults.
func NewManager(fs filesystem.FileSystem, config Config) *Manager {
	config.normalize()
	return &Manager{fs: fs, config: config}
}

// Parse splits existing changelog content into ordered version sections,
// dropping the preamble before the first version header.
func (m *Manager) Parse(content string) []VersionSection {
	var sections []VersionSection
	var current *VersionSection

	for _, line := range strings.Split(content, "\n") {
		if match := versionHeaderPattern.FindStringSubmatch(line); match != nil {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &VersionSection{Version: match[1], Lines: []string{line}}
			continue
		}
		if current != nil {
			current.Lines = append(current.Lines, line)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}

	return sections
}

// FormatCommit renders one commit as a changelog bullet, or "" when its
// type is configured to be skipped.
func (m *Manager) FormatCommit(commit *models.ConventionalCommit) string {
	for _, skipped := range m.config.SkipTypes {
		if commit.Type.String() == skipped {
			return ""
		}
	}

	entry := commit.Description
	if commit.Scope != "" {
		entry = fmt.Sprintf("**%s:** %s", commit.Scope, entry)
	}
	if commit.Breaking {
		entry = "💥 " + entry
	}

	return "- " + entry
}

// GroupCommits buckets formatted commit bullets by section key.
// Breaking commits land in the "breaking" group regardless of type.
func (m *Manager) GroupCommits(commits []*models.ConventionalCommit) map[string][]string {
	groups := make(map[string][]string)
	for _, commit := range commits {
		key := commit.Type.String()
		if commit.Breaking {
			key = "breaking"
		}
		if entry := m.FormatCommit(commit); entry != "" {
			groups[key] = append(groups[key], entry)
		}
	}
	return groups
}

// VersionLinks builds the compare/release link block for the new version
// against previously-released ones. Empty without a repo URL.
func (m *Manager) VersionLinks(version string, existing []VersionSection) []string {
	if m.config.RepoURL == "" {
		return nil
	}

	versions := []string{version}
	for _, section := range existing {
		if section.Version != m.config.UnreleasedLabel {
			versions = append(versions, section.Version)
		}
	}

	links := []string{fmt.Sprintf("[%s]: %s/compare/v%s...HEAD", m.config.UnreleasedLabel, m.config.RepoURL, version)}
	for i, ver := range versions {
		if i == len(versions)-1 {
			links = append(links, fmt.Sprintf("[%s]: %s/releases/tag/v%s", ver, m.config.RepoURL, ver))
			continue
		}
		links = append(links, fmt.Sprintf("[%s]: %s/compare/v%s...v%s", ver, m.config.RepoURL, versions[i+1], ver))
	}

	return links
}

// Update rewrites the changelog with a new version section at the top,
// keeping all previously released sections below it.
func (m *Manager) Update(path, version string, commits []*models.ConventionalCommit, date time.Time) error {
	if !m.fs.Exists(path) {
		initial := fmt.Sprintf("%s\n\n## [%s]\n", m.config.HeaderTemplate, m.config.UnreleasedLabel)
		if err := m.fs.WriteFile(path, []byte(initial), 0644); err != nil {
			return fmt.Errorf("failed to create changelog: %w", err)
		}
	}

	data, err := m.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read changelog: %w", err)
	}

	// The Unreleased section keeps its place above version history.
	var unreleased []VersionSection
	var existing []VersionSection
	for _, section := range m.Parse(string(data)) {
		if section.Version == m.config.UnreleasedLabel {
			unreleased = append(unreleased, section)
			continue
		}
		existing = append(existing, section)
	}

	groups := m.GroupCommits(commits)

	newSection := []string{fmt.Sprintf("## [%s] - %s", version, date.Format("2006-01-02"))}
	for _, section := range m.config.Sections {
		entries := groups[section.Key]
		if len(entries) == 0 {
			continue
		}
		newSection = append(newSection, "### "+section.Title, "")
		newSection = append(newSection, entries...)
		newSection = append(newSection, "")
	}

	if links := m.VersionLinks(version, existing); len(links) > 0 {
		newSection = append(newSection, "")
		newSection = append(newSection, links...)
	}

	lines := []string{m.config.HeaderTemplate, ""}
	for _, section := range unreleased {
		lines = append(lines, section.Lines...)
	}
	lines = append(lines, newSection...)
	lines = append(lines, "")
	for _, section := range existing {
		lines = append(lines, section.Lines...)
	}

	content := strings.Join(lines, "\n")
	if err := m.fs.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}

	return nil
}
