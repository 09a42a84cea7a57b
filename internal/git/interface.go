package git

import (
	"context"
)

// GitClient provides an abstraction over git operations for testability
//
// All query operations run against the repository containing the
// process working directory. Hook runners rely on this because git
// invokes hooks with the repository root as the working directory.
type GitClient interface {
	// Repository operations
	IsGitRepo() (bool, error)
	RepoRoot() (string, error)
	GitDir() (string, error)
	Head() (string, error)
	HeadMessage() (string, error)
	HasMergeParent() (bool, error)
	RebaseInProgress() (bool, error)
	RemoteURL(remote string) (string, error)

	// Tag operations
	LatestTag() (string, error)
	TagExists(tagName string) (bool, error)
	CreateTag(tagName, message string) error

	// History operations
	CommitMessagesSince(tag string) ([]string, error)

	// Working tree operations
	StageFiles(paths []string) error
	AmendNoEdit() error

	// Context support
	WithContext(ctx context.Context) GitClient
}
