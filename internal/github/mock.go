package github

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu sync.RWMutex

	releases     map[string]*Release // key: owner/repo@tag
	repositories map[string]*Repository

	// Hooks for testing error scenarios
	CreateReleaseError error
	GetReleaseError    error
	GetRepositoryError error

	nextID int64
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		releases:     make(map[string]*Release),
		repositories: make(map[string]*Repository),
		nextID:       1,
	}
}

// AddRepository registers a repository (for test setup)
func (m *MockClient) AddRepository(repo *Repository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repositories[repo.Owner+"/"+repo.Name] = repo
}

func releaseKey(owner, repo, tag string) string {
	return fmt.Sprintf("%s/%s@%s", owner, repo, tag)
}

func (m *MockClient) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	if m.GetReleaseError != nil {
		return nil, m.GetReleaseError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	release, ok := m.releases[releaseKey(owner, repo, tag)]
	if !ok {
		return nil, fmt.Errorf("release not found for tag %s", tag)
	}
	return release, nil
}

func (m *MockClient) CreateRelease(ctx context.Context, owner, repo string, req *CreateReleaseRequest) (*Release, error) {
	if m.CreateReleaseError != nil {
		return nil, m.CreateReleaseError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := releaseKey(owner, repo, req.TagName)
	if _, exists := m.releases[key]; exists {
		return nil, fmt.Errorf("release already exists for tag %s", req.TagName)
	}

	release := &Release{
		ID:          m.nextID,
		TagName:     req.TagName,
		Name:        req.Name,
		Body:        req.Body,
		Draft:       req.Draft,
		Prerelease:  req.Prerelease,
		HTMLURL:     fmt.Sprintf("https://github.com/%s/%s/releases/tag/%s", owner, repo, req.TagName),
		CreatedAt:   time.Now(),
		PublishedAt: time.Now(),
	}
	m.nextID++
	m.releases[key] = release

	return release, nil
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	repository, ok := m.repositories[owner+"/"+repo]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s not found", owner, repo)
	}
	return repository, nil
}

var _ GitHubClient = (*MockClient)(nil)
