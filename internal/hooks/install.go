package hooks

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
)

// managedMarker identifies hook scripts created by this tool. Uninstall
// refuses to touch scripts without it.
const managedMarker = "verbump-managed hook"

// markerFileName records the installed mode in the hooks directory.
const markerFileName = ".verbump-managed"

// HookStatus describes the state of a single hook file
type HookStatus string

const (
	HookMissing HookStatus = "missing"
	HookManaged HookStatus = "managed"
	HookForeign HookStatus = "foreign"
)

// modernHooks is the default hook set: prepare-commit-msg detects
// amends, post-commit bumps and tags.
var modernHooks = []string{"prepare-commit-msg", "post-commit"}

// legacyHooks is the fallback single-hook set that stages version
// changes for a follow-up commit instead of amending.
var legacyHooks = []string{"commit-msg"}

// allHookNames covers both modes, for uninstall and status.
var allHookNames = []string{"prepare-commit-msg", "commit-msg", "post-commit"}

// Installer manages hook scripts in the repository's hooks directory
type Installer struct {
	fs  filesystem.FileSystem
	git git.GitClient
}

// NewInstaller creates a new Installer
func NewInstaller(fs filesystem.FileSystem, gitClient git.GitClient) *Installer {
	return &Installer{
		fs:  fs,
		git: gitClient,
	}
}

func (i *Installer) hooksDir() (string, error) {
	gitDir, err := i.git.GitDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(gitDir, "hooks")
	if err := i.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}

	return dir, nil
}

// hookScript renders the shell script for a hook. The script delegates
// to the verbump binary so upgrades don't require reinstalling hooks.
func hookScript(hookName string) string {
	return fmt.Sprintf(`#!/bin/sh
# %s (%s). Auto-generated, do not edit.
exec verbump hook %s "$@"
`, managedMarker, hookName, hookName)
}

// Install writes the hook scripts for the chosen mode. Existing foreign
// hooks are not overwritten and cause an error.
func (i *Installer) Install(legacy bool) ([]string, error) {
	dir, err := i.hooksDir()
	if err != nil {
		return nil, err
	}

	names := modernHooks
	mode := "modern"
	if legacy {
		names = legacyHooks
		mode = "legacy"
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		if status := i.statusOf(path); status == HookForeign {
			return nil, fmt.Errorf("hook %s already exists and is not managed by verbump", name)
		}
	}

	var installed []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := i.fs.WriteFile(path, []byte(hookScript(name)), 0o755); err != nil {
			return installed, fmt.Errorf("failed to write hook %s: %w", name, err)
		}
		if err := i.fs.Chmod(path, 0o755); err != nil {
			return installed, fmt.Errorf("failed to make hook %s executable: %w", name, err)
		}
		installed = append(installed, name)
	}

	marker := fmt.Sprintf("# verbump-managed hooks\n# Mode: %s\n", mode)
	if err := i.fs.WriteFile(filepath.Join(dir, markerFileName), []byte(marker), 0o644); err != nil {
		return installed, fmt.Errorf("failed to write marker file: %w", err)
	}

	return installed, nil
}

// Uninstall removes managed hook scripts and the marker file. Foreign
// hooks are left in place and reported back.
func (i *Installer) Uninstall() (removed, skipped []string, err error) {
	dir, err := i.hooksDir()
	if err != nil {
		return nil, nil, err
	}

	for _, name := range allHookNames {
		path := filepath.Join(dir, name)
		switch i.statusOf(path) {
		case HookManaged:
			if err := i.fs.Remove(path); err != nil {
				return removed, skipped, fmt.Errorf("failed to remove hook %s: %w", name, err)
			}
			removed = append(removed, name)
		case HookForeign:
			skipped = append(skipped, name)
		}
	}

	markerPath := filepath.Join(dir, markerFileName)
	if i.fs.Exists(markerPath) {
		if err := i.fs.Remove(markerPath); err != nil {
			return removed, skipped, fmt.Errorf("failed to remove marker file: %w", err)
		}
	}

	// Stale runtime files from an interrupted hook run.
	if root, err := i.git.RepoRoot(); err == nil {
		for _, name := range []string{lockFileName, skipFlagName} {
			path := filepath.Join(root, name)
			if i.fs.Exists(path) {
				_ = i.fs.Remove(path)
			}
		}
	}

	return removed, skipped, nil
}

// InstallMode is the hook mode derived from the managed hook set.
type InstallMode string

const (
	ModeModern       InstallMode = "modern"
	ModeLegacy       InstallMode = "legacy"
	ModePartial      InstallMode = "partial"
	ModeNotInstalled InstallMode = "not installed"
)

// StatusReport is the full installation state: per-hook status, the
// derived mode, and leftover runtime files from an interrupted hook run.
type StatusReport struct {
	Hooks map[string]HookStatus
	Mode  InstallMode

	// MarkerMode is the mode recorded in the marker file at install
	// time, empty when no marker exists. It can disagree with Mode
	// after hooks were removed by hand.
	MarkerMode InstallMode

	StaleFiles []string
}

// Status reports the state of every known hook name, the derived mode,
// and any stale lock or skip-flag file in the repository root.
func (i *Installer) Status() (*StatusReport, error) {
	dir, err := i.hooksDir()
	if err != nil {
		return nil, err
	}

	report := &StatusReport{Hooks: make(map[string]HookStatus, len(allHookNames))}
	for _, name := range allHookNames {
		report.Hooks[name] = i.statusOf(filepath.Join(dir, name))
	}
	report.Mode = deriveMode(report.Hooks)
	report.MarkerMode = i.readMarkerMode(dir)

	if root, err := i.git.RepoRoot(); err == nil {
		for _, name := range []string{lockFileName, skipFlagName} {
			path := filepath.Join(root, name)
			if i.fs.Exists(path) {
				report.StaleFiles = append(report.StaleFiles, path)
			}
		}
	}

	return report, nil
}

// readMarkerMode extracts the "# Mode:" line written by Install.
func (i *Installer) readMarkerMode(dir string) InstallMode {
	data, err := i.fs.ReadFile(filepath.Join(dir, markerFileName))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if rest, ok := strings.CutPrefix(line, "# Mode:"); ok {
			return InstallMode(strings.TrimSpace(rest))
		}
	}
	return ""
}

// deriveMode mirrors the install sets: both modern hooks managed means
// modern, the legacy hook managed means legacy, any other managed hook
// is a partial install.
func deriveMode(hooks map[string]HookStatus) InstallMode {
	managed := func(name string) bool { return hooks[name] == HookManaged }

	switch {
	case managed("prepare-commit-msg") && managed("post-commit"):
		return ModeModern
	case managed("commit-msg"):
		return ModeLegacy
	case managed("prepare-commit-msg") || managed("post-commit"):
		return ModePartial
	default:
		return ModeNotInstalled
	}
}

func (i *Installer) statusOf(path string) HookStatus {
	if !i.fs.Exists(path) {
		return HookMissing
	}

	content, err := i.fs.ReadFile(path)
	if err != nil {
		return HookForeign
	}
	if strings.Contains(string(content), managedMarker) {
		return HookManaged
	}

	return HookForeign
}
