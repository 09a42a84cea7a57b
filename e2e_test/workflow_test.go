package e2e_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verbump/verbump/internal/filesystem"
	"github.com/verbump/verbump/internal/git"
	"github.com/verbump/verbump/internal/github"
	"github.com/verbump/verbump/internal/hooks"
	"github.com/verbump/verbump/internal/versioning"
)

func newRunner(fs filesystem.FileSystem, client git.GitClient) *hooks.Runner {
	runner := hooks.NewRunner(fs, client)
	runner.Out = io.Discard
	runner.Getenv = func(string) string { return "" }
	return runner
}

func TestCommitToReleaseWorkflow(t *testing.T) {
	// Setup mock project
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nname = \"widget\"\nversion = \"1.1.0\"\n"))

	gitMock := git.NewMockGitClient()
	gitMock.SetHead("abc1234", "feat: add OAuth2 login")

	// Test: hook installation
	installer := hooks.NewInstaller(fs, gitMock)
	installed, err := installer.Install(false)
	require.NoError(t, err)
	require.Equal(t, []string{"prepare-commit-msg", "post-commit"}, installed)

	report, err := installer.Status()
	require.NoError(t, err)
	require.Equal(t, hooks.HookManaged, report.Hooks["post-commit"])
	require.Equal(t, hooks.ModeModern, report.Mode)

	// Test: post-commit bumps, writes the changelog, amends, and tags
	runner := newRunner(fs, gitMock)
	runner.Now = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, runner.PostCommit("", true))

	require.Contains(t, string(fs.Content("/repo/pyproject.toml")), "1.2.0")
	require.Equal(t, []string{"/repo/pyproject.toml", "/repo/CHANGELOG.md"}, gitMock.StagedFiles)
	require.Equal(t, 1, gitMock.AmendCount)
	require.Equal(t, []string{"v1.2.0"}, gitMock.CreatedTags)

	// Test: version manager sees the new version
	manager, err := versioning.ManagerFromConfig(fs, versioning.ManagerConfig{VersionFile: "/repo/pyproject.toml"})
	require.NoError(t, err)
	current, err := manager.GetPrimaryVersion()
	require.NoError(t, err)
	require.Equal(t, "1.2.0", current.String())

	// Test: the hook wrote the changelog entry
	content := string(fs.Content("/repo/CHANGELOG.md"))
	require.Contains(t, content, "## [1.2.0] - 2026-03-14")
	require.Contains(t, content, "add OAuth2 login")

	// Test: GitHub release from the normalized remote
	ghMock := github.NewMockClient()
	remote, err := gitMock.RemoteURL("origin")
	require.NoError(t, err)
	owner, repo, err := github.ParseRepoURL(remote)
	require.NoError(t, err)

	release, err := ghMock.CreateRelease(context.Background(), owner, repo, &github.CreateReleaseRequest{
		TagName: "v1.2.0",
		Name:    "v1.2.0",
		Body:    content,
	})
	require.NoError(t, err)
	require.Equal(t, "v1.2.0", release.TagName)

	fetched, err := ghMock.GetReleaseByTag(context.Background(), owner, repo, "v1.2.0")
	require.NoError(t, err)
	require.Contains(t, fetched.Body, "add OAuth2 login")
}

func TestAmendDoesNotDoubleBump(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/pyproject.toml", []byte("[project]\nname = \"widget\"\nversion = \"1.1.0\"\n"))
	fs.AddFile("/repo/.git/COMMIT_EDITMSG", []byte("feat: add OAuth2 login\n"))

	gitMock := git.NewMockGitClient()
	gitMock.SetHead("abc1234", "feat: add OAuth2 login")
	runner := newRunner(fs, gitMock)

	// First commit bumps normally.
	require.NoError(t, runner.PrepareCommitMsg("/repo/.git/COMMIT_EDITMSG", "message", ""))
	require.NoError(t, runner.PostCommit("", false))
	require.Contains(t, string(fs.Content("/repo/pyproject.toml")), "1.2.0")
	require.Equal(t, 1, gitMock.AmendCount)

	// An amend of the same commit is flagged and skipped.
	gitMock.SetHead("def5678", "feat: add OAuth2 login")
	require.NoError(t, runner.PrepareCommitMsg("/repo/.git/COMMIT_EDITMSG", "commit", "def5678"))
	require.NoError(t, runner.PostCommit("", false))

	require.Contains(t, string(fs.Content("/repo/pyproject.toml")), "1.2.0")
	require.Equal(t, 1, gitMock.AmendCount)
}
