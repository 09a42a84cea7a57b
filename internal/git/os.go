package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// recordSeparator delimits commit messages in git log output. Plain
// newline splitting would break multi-line bodies apart.
const recordSeparator = "<<>>"

// OSGitClient implements GitClient using real git commands
type OSGitClient struct {
	ctx context.Context
}

// NewOSGitClient creates a new OSGitClient
func NewOSGitClient() *OSGitClient {
	return &OSGitClient{
		ctx: context.Background(),
	}
}

// WithContext returns a new client with the given context
func (g *OSGitClient) WithContext(ctx context.Context) GitClient {
	return &OSGitClient{
		ctx: ctx,
	}
}

// run executes a git command and returns its trimmed stdout.
func (g *OSGitClient) run(args ...string) (string, error) {
	cmd := exec.CommandContext(g.ctx, "git", args...)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(out.String()), nil
}

// IsGitRepo checks if the current directory is inside a git repository
func (g *OSGitClient) IsGitRepo() (bool, error) {
	cmd := exec.CommandContext(g.ctx, "git", "rev-parse", "--git-dir")

	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}

// RepoRoot returns the absolute path of the repository working tree root
func (g *OSGitClient) RepoRoot() (string, error) {
	return g.run("rev-parse", "--show-toplevel")
}

// GitDir returns the absolute path of the .git directory
func (g *OSGitClient) GitDir() (string, error) {
	return g.run("rev-parse", "--absolute-git-dir")
}

// Head returns the SHA of the current HEAD commit.
// Returns empty string in an empty repository with no commits.
func (g *OSGitClient) Head() (string, error) {
	sha, err := g.run("rev-parse", "HEAD")
	if err != nil {
		return "", nil
	}
	return sha, nil
}

// HeadMessage returns the full message of the HEAD commit
func (g *OSGitClient) HeadMessage() (string, error) {
	return g.run("log", "-1", "--pretty=format:%B")
}

// HasMergeParent reports whether HEAD has a second parent
func (g *OSGitClient) HasMergeParent() (bool, error) {
	cmd := exec.CommandContext(g.ctx, "git", "rev-parse", "-q", "--verify", "HEAD^2")

	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}

// RebaseInProgress reports whether an interactive or apply rebase is ongoing
func (g *OSGitClient) RebaseInProgress() (bool, error) {
	gitDir, err := g.GitDir()
	if err != nil {
		return false, err
	}

	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true, nil
		}
	}

	return false, nil
}

// RemoteURL returns the remote's URL normalized to https form with any
// trailing .git stripped. SSH URLs like git@github.com:owner/repo.git
// become https://github.com/owner/repo.
func (g *OSGitClient) RemoteURL(remote string) (string, error) {
	url, err := g.run("remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return NormalizeRemoteURL(url), nil
}

// NormalizeRemoteURL converts ssh remote URLs to https and strips .git
func NormalizeRemoteURL(url string) string {
	url = strings.TrimSuffix(url, ".git")

	if rest, ok := strings.CutPrefix(url, "git@"); ok {
		rest = strings.Replace(rest, ":", "/", 1)
		return "https://" + rest
	}
	if rest, ok := strings.CutPrefix(url, "ssh://git@"); ok {
		return "https://" + rest
	}

	return url
}

// LatestTag returns the most recent tag reachable from HEAD.
// Returns empty string when the repository has no tags.
func (g *OSGitClient) LatestTag() (string, error) {
	tag, err := g.run("describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", nil
	}
	return tag, nil
}

// TagExists checks if a tag exists locally
func (g *OSGitClient) TagExists(tagName string) (bool, error) {
	out, err := g.run("tag", "-l", tagName)
	if err != nil {
		return false, fmt.Errorf("failed to check tag: %w", err)
	}
	return out != "", nil
}

// CreateTag creates an annotated tag. The tag name must carry a valid
// semantic version, with or without a leading v.
func (g *OSGitClient) CreateTag(tagName, message string) error {
	candidate := tagName
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	if !semver.IsValid(candidate) {
		return fmt.Errorf("invalid tag name %s: not a semantic version", tagName)
	}

	if _, err := g.run("tag", "-a", tagName, "-m", message); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tagName, err)
	}

	return nil
}

// CommitMessagesSince returns the full messages of commits after the
// given tag, newest first. An empty tag means the whole history.
func (g *OSGitClient) CommitMessagesSince(tag string) ([]string, error) {
	args := []string{"log", "--pretty=format:%B" + recordSeparator}
	if tag != "" {
		args = append(args, tag+"..HEAD")
	}

	out, err := g.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}

	var messages []string
	for _, record := range strings.Split(out, recordSeparator) {
		record = strings.TrimSpace(record)
		if record != "" {
			messages = append(messages, record)
		}
	}

	return messages, nil
}

// StageFiles adds the given paths to the index
func (g *OSGitClient) StageFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	args := append([]string{"add", "--"}, paths...)
	if _, err := g.run(args...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}

	return nil
}

// AmendNoEdit amends the HEAD commit keeping its message. Hooks are
// suppressed so the amend does not re-trigger the hook that issued it.
func (g *OSGitClient) AmendNoEdit() error {
	if _, err := g.run("commit", "--amend", "--no-edit", "--no-verify"); err != nil {
		return fmt.Errorf("failed to amend commit: %w", err)
	}

	return nil
}
