package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client implements GitHubClient using the real GitHub API
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

var (
	ErrGitHubTokenNotFound = fmt.Errorf("GITHUB_TOKEN or GH_TOKEN environment variable not found")
	ErrNotGitHubRemote     = fmt.Errorf("remote URL does not point at a GitHub repository")
)

// NewClientFromEnv creates a GitHub client using the token from environment variables
func NewClientFromEnv() (*Client, error) {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, ErrGitHubTokenNotFound
	}

	return NewClient(token), nil
}

// ParseRepoURL extracts owner and repository name from a normalized
// https remote URL like https://github.com/owner/repo
func ParseRepoURL(url string) (owner, repo string, err error) {
	rest, ok := strings.CutPrefix(url, "https://github.com/")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHubRemote, url)
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHubRemote, url)
	}

	return parts[0], parts[1], nil
}

func (c *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	release, _, err := c.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get release by tag %s: %w", tag, err)
	}
	return convertRelease(release), nil
}

func (c *Client) CreateRelease(ctx context.Context, owner, repo string, req *CreateReleaseRequest) (*Release, error) {
	ghRelease := &github.RepositoryRelease{
		TagName:         &req.TagName,
		Name:            &req.Name,
		Body:            &req.Body,
		Draft:           &req.Draft,
		Prerelease:      &req.Prerelease,
		TargetCommitish: &req.TargetCommitish,
	}

	release, _, err := c.client.Repositories.CreateRelease(ctx, owner, repo, ghRelease)
	if err != nil {
		return nil, fmt.Errorf("failed to create release: %w", err)
	}
	return convertRelease(release), nil
}

func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	repository, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return convertRepository(repository), nil
}

func convertRelease(r *github.RepositoryRelease) *Release {
	release := &Release{
		ID:         r.GetID(),
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		Body:       r.GetBody(),
		Draft:      r.GetDraft(),
		Prerelease: r.GetPrerelease(),
		HTMLURL:    r.GetHTMLURL(),
	}

	if !r.GetCreatedAt().IsZero() {
		release.CreatedAt = r.GetCreatedAt().Time
	}
	if !r.GetPublishedAt().IsZero() {
		release.PublishedAt = r.GetPublishedAt().Time
	}

	return release
}

func convertRepository(r *github.Repository) *Repository {
	return &Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		URL:           r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}

var _ GitHubClient = (*Client)(nil)
