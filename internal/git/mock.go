package git

import (
	"context"
	"fmt"
	"sync"
)

// MockGitClient implements GitClient for testing
type MockGitClient struct {
	mu sync.RWMutex

	isRepo         bool
	repoRoot       string
	gitDir         string
	head           string
	headMessage    string
	mergeParent    bool
	rebasing       bool
	remotes        map[string]string
	tags           map[string]string // tag name -> annotation
	latestTag      string
	commitMessages []string // newest first, commits after latestTag

	// Recorded mutations for assertions
	StagedFiles []string
	AmendCount  int
	CreatedTags []string

	ctx context.Context

	// Hooks for testing error scenarios
	CommitMessagesError error
	CreateTagError      error
	StageFilesError     error
	AmendError          error
}

// NewMockGitClient creates a MockGitClient representing a repository
// with a single commit and no tags
func NewMockGitClient() *MockGitClient {
	return &MockGitClient{
		isRepo:   true,
		repoRoot: "/repo",
		gitDir:   "/repo/.git",
		head:     "0000001",
		remotes:  map[string]string{"origin": "https://github.com/acme/widget"},
		tags:     make(map[string]string),
		ctx:      context.Background(),
	}
}

// WithContext returns a new client with the given context
func (m *MockGitClient) WithContext(ctx context.Context) GitClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := &MockGitClient{
		isRepo:         m.isRepo,
		repoRoot:       m.repoRoot,
		gitDir:         m.gitDir,
		head:           m.head,
		headMessage:    m.headMessage,
		mergeParent:    m.mergeParent,
		rebasing:       m.rebasing,
		remotes:        m.remotes,
		tags:           m.tags,
		latestTag:      m.latestTag,
		commitMessages: m.commitMessages,

		StagedFiles: m.StagedFiles,
		AmendCount:  m.AmendCount,
		CreatedTags: m.CreatedTags,

		CommitMessagesError: m.CommitMessagesError,
		CreateTagError:      m.CreateTagError,
		StageFilesError:     m.StageFilesError,
		AmendError:          m.AmendError,

		ctx: ctx,
	}
	return clone
}

// SetIsRepo sets whether this is a git repository
func (m *MockGitClient) SetIsRepo(isRepo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRepo = isRepo
}

// SetRepoRoot sets the working tree root and derives the git dir
func (m *MockGitClient) SetRepoRoot(root string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repoRoot = root
	m.gitDir = root + "/.git"
}

// SetHead sets the current HEAD SHA and message
func (m *MockGitClient) SetHead(sha, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = sha
	m.headMessage = message
}

// SetMergeParent marks HEAD as a merge commit
func (m *MockGitClient) SetMergeParent(merge bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeParent = merge
}

// SetRebaseInProgress marks a rebase as ongoing
func (m *MockGitClient) SetRebaseInProgress(rebasing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebasing = rebasing
}

// SetRemote sets a remote URL (stored as given, normalized on read)
func (m *MockGitClient) SetRemote(name, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remotes[name] = url
}

// SetLatestTag sets the tag returned by LatestTag
func (m *MockGitClient) SetLatestTag(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestTag = tag
	if tag != "" {
		m.tags[tag] = ""
	}
}

// SetCommitMessages sets the messages returned by CommitMessagesSince,
// newest first
func (m *MockGitClient) SetCommitMessages(messages ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitMessages = messages
}

// AddTag registers an existing tag with its annotation
func (m *MockGitClient) AddTag(name, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[name] = message
}

func (m *MockGitClient) IsGitRepo() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRepo, nil
}

func (m *MockGitClient) RepoRoot() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.isRepo {
		return "", fmt.Errorf("not a git repository")
	}
	return m.repoRoot, nil
}

func (m *MockGitClient) GitDir() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.isRepo {
		return "", fmt.Errorf("not a git repository")
	}
	return m.gitDir, nil
}

func (m *MockGitClient) Head() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.head, nil
}

func (m *MockGitClient) HeadMessage() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.headMessage, nil
}

func (m *MockGitClient) HasMergeParent() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mergeParent, nil
}

func (m *MockGitClient) RebaseInProgress() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rebasing, nil
}

func (m *MockGitClient) RemoteURL(remote string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.remotes[remote]
	if !ok {
		return "", fmt.Errorf("no such remote: %s", remote)
	}
	return NormalizeRemoteURL(url), nil
}

func (m *MockGitClient) LatestTag() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latestTag, nil
}

func (m *MockGitClient) TagExists(tagName string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.tags[tagName]
	return exists, nil
}

func (m *MockGitClient) CreateTag(tagName, message string) error {
	if m.CreateTagError != nil {
		return m.CreateTagError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tags[tagName]; exists {
		return fmt.Errorf("tag %s already exists", tagName)
	}

	m.tags[tagName] = message
	m.CreatedTags = append(m.CreatedTags, tagName)
	return nil
}

func (m *MockGitClient) CommitMessagesSince(tag string) ([]string, error) {
	if m.CommitMessagesError != nil {
		return nil, m.CommitMessagesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.commitMessages))
	copy(result, m.commitMessages)
	return result, nil
}

func (m *MockGitClient) StageFiles(paths []string) error {
	if m.StageFilesError != nil {
		return m.StageFilesError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.StagedFiles = append(m.StagedFiles, paths...)
	return nil
}

func (m *MockGitClient) AmendNoEdit() error {
	if m.AmendError != nil {
		return m.AmendError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.AmendCount++
	return nil
}

var _ GitClient = (*MockGitClient)(nil)
