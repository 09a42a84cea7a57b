package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/github"
	"github.com/verbump/verbump/internal/hooks"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func newProjectFS(t *testing.T, version string) *filesystem.MockFileSystem {
	t.Helper()

	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nname = \"widget\"\nversion = \""+version+"\"\n"))
	return fs
}

func TestCheckCommand(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	output, err := execute(t, NewCheckCommand(fs), "feat(api)!: redesign endpoints")
	require.NoError(t, err)
	assert.Contains(t, output, "Type: feat")
	assert.Contains(t, output, "Scope: api")
	assert.Contains(t, output, "Breaking change")
	assert.Contains(t, output, "Bump: major")
}

func TestCheckCommand_Fixup(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	output, err := execute(t, NewCheckCommand(fs), "fixup! feat: add login")
	require.NoError(t, err)
	assert.Contains(t, output, "no version bump")
}

func TestCheckCommand_Invalid(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	_, err := execute(t, NewCheckCommand(fs), "updated stuff")
	require.Error(t, err)
}

func TestCheckCommand_FromFile(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/msg.txt", []byte("fix: handle nil\n"))

	output, err := execute(t, NewCheckCommand(fs), "--file", "/repo/msg.txt")
	require.NoError(t, err)
	assert.Contains(t, output, "Bump: patch")
}

func TestVersionCommand(t *testing.T) {
	fs := newProjectFS(t, "1.4.2")
	client := git.NewMockGitClient()

	output, err := execute(t, NewVersionCommand(fs, client))
	require.NoError(t, err)
	assert.Contains(t, output, "1.4.2")
}

func TestBumpCommand_DryRun(t *testing.T) {
	fs := newProjectFS(t, "1.0.0")
	client := git.NewMockGitClient()
	client.SetCommitMessages("feat: add login", "fix: handle nil")

	output, err := execute(t, NewBumpCommand(fs, client), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "Would bump 1.0.0 -> 1.1.0")
	assert.Contains(t, string(fs.Content("/repo/pyproject.toml")), "1.0.0")
}

func TestBumpCommand_WritesVersionAndChangelog(t *testing.T) {
	fs := newProjectFS(t, "1.0.0")
	client := git.NewMockGitClient()
	client.SetCommitMessages("feat: add login")

	output, err := execute(t, NewBumpCommand(fs, client))
	require.NoError(t, err)
	assert.Contains(t, output, "Version bumped: 1.0.0 -> 1.1.0")

	assert.Contains(t, string(fs.Content("/repo/pyproject.toml")), "1.1.0")

	changelog := string(fs.Content("/repo/CHANGELOG.md"))
	assert.Contains(t, changelog, "## [1.1.0]")
	assert.Contains(t, changelog, "add login")
}

func TestBumpCommand_ExplicitMessages(t *testing.T) {
	fs := newProjectFS(t, "1.0.0")
	client := git.NewMockGitClient()

	output, err := execute(t, NewBumpCommand(fs, client), "--dry-run", "-m", "fix: handle nil")
	require.NoError(t, err)
	assert.Contains(t, output, "1.0.0 -> 1.0.1")
}

func TestBumpCommand_ForcedType(t *testing.T) {
	fs := newProjectFS(t, "1.0.0")
	client := git.NewMockGitClient()

	output, err := execute(t, NewBumpCommand(fs, client), "--dry-run", "--type", "major")
	require.NoError(t, err)
	assert.Contains(t, output, "1.0.0 -> 2.0.0")
}

func TestBumpCommand_NoConventionalCommits(t *testing.T) {
	fs := newProjectFS(t, "1.0.0")
	client := git.NewMockGitClient()
	client.SetCommitMessages("updated stuff")

	output, err := execute(t, NewBumpCommand(fs, client))
	require.NoError(t, err)
	assert.Contains(t, output, "No version change needed")
}

func TestBumpCommand_InvalidPrerelease(t *testing.T) {
	fs := newProjectFS(t, "1.0.0")
	client := git.NewMockGitClient()

	_, err := execute(t, NewBumpCommand(fs, client), "--pre", "nightly")
	require.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))
	fs.AddFile("/repo/service/package.json", []byte(`{"version": "1.0.0"}`))
	fs.AddFile("/repo/service/main.go", []byte("package main\n"))
	client := git.NewMockGitClient()

	output, err := execute(t, NewInitCommand(fs, client))
	require.NoError(t, err)
	assert.Contains(t, output, "Created /repo/verbump.toml")

	content := string(fs.Content("/repo/verbump.toml"))
	assert.Contains(t, content, "pyproject.toml")
	assert.Contains(t, content, "service/package.json")

	// Refuses to overwrite without --force.
	_, err = execute(t, NewInitCommand(fs, client))
	require.Error(t, err)
}

func TestReleaseCommand(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("CHANGELOG.md", []byte(`# Changelog

## [Unreleased]

## [1.1.0] - 2026-03-14

### Features

- add login

## [1.0.0] - 2026-01-01
`))

	client := git.NewMockGitClient()
	client.AddTag("v1.1.0", "Release 1.1.0")
	client.SetLatestTag("v1.1.0")
	gh := github.NewMockClient()

	output, err := execute(t, NewReleaseCommand(fs, client, gh))
	require.NoError(t, err)
	assert.Contains(t, output, "Created release v1.1.0")

	release, err := gh.GetReleaseByTag(context.Background(), "acme", "widget", "v1.1.0")
	require.NoError(t, err)
	assert.Contains(t, release.Body, "add login")
	assert.NotContains(t, release.Body, "## [1.1.0]")
}

func TestReleaseCommand_NoToken(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	client := git.NewMockGitClient()

	_, err := execute(t, NewReleaseCommand(fs, client, nil))
	require.ErrorIs(t, err, github.ErrGitHubTokenNotFound)
}

func TestPatchShorthand(t *testing.T) {
	fs := newProjectFS(t, "2.3.4")
	client := git.NewMockGitClient()

	output, err := execute(t, NewPatchCommand(fs, client), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "2.3.4 -> 2.3.5")
}

func TestHooksStatusCommand(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	client := git.NewMockGitClient()

	installer := hooks.NewInstaller(fs, client)
	_, err := installer.Install(false)
	require.NoError(t, err)
	fs.AddFile("/repo/.verbump_post_commit_lock", []byte("0000001"))

	output, err := execute(t, NewHooksCommand(fs, client), "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Mode: modern")
	assert.Contains(t, output, "prepare-commit-msg")
	assert.Contains(t, output, "managed")
	assert.Contains(t, output, "Stale runtime file: /repo/.verbump_post_commit_lock")
}

func TestHooksStatusCommand_NotInstalled(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	client := git.NewMockGitClient()

	output, err := execute(t, NewHooksCommand(fs, client), "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Mode: not installed")
	assert.NotContains(t, output, "Stale runtime file")
}
