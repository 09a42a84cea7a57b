package git

import (
	"sync"
)

// HistoryCache memoizes commit history lookups for a single HEAD state.
// The cache key is the HEAD SHA, so a new commit (or an amend) naturally
// invalidates prior entries. Hook runners share one cache per process;
// long-lived callers must Invalidate after mutating history themselves.
type HistoryCache struct {
	mu sync.Mutex

	client GitClient

	head      string
	latestTag string
	hasTag    bool
	messages  map[string][]string // tag -> messages
}

// NewHistoryCache creates a cache over the given client
func NewHistoryCache(client GitClient) *HistoryCache {
	return &HistoryCache{
		client:   client,
		messages: make(map[string][]string),
	}
}

// ensure drops cached entries when HEAD has moved since the last call.
func (c *HistoryCache) ensure() error {
	head, err := c.client.Head()
	if err != nil {
		return err
	}

	if head != c.head {
		c.head = head
		c.hasTag = false
		c.latestTag = ""
		c.messages = make(map[string][]string)
	}

	return nil
}

// LatestTag returns the latest reachable tag, caching per HEAD
func (c *HistoryCache) LatestTag() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensure(); err != nil {
		return "", err
	}

	if !c.hasTag {
		tag, err := c.client.LatestTag()
		if err != nil {
			return "", err
		}
		c.latestTag = tag
		c.hasTag = true
	}

	return c.latestTag, nil
}

// CommitMessagesSince returns commit messages after the tag, caching per
// HEAD and tag
func (c *HistoryCache) CommitMessagesSince(tag string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensure(); err != nil {
		return nil, err
	}

	if cached, ok := c.messages[tag]; ok {
		return cached, nil
	}

	messages, err := c.client.CommitMessagesSince(tag)
	if err != nil {
		return nil, err
	}

	c.messages[tag] = messages
	return messages, nil
}

// Invalidate clears all cached entries
func (c *HistoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = ""
	c.hasTag = false
	c.latestTag = ""
	c.messages = make(map[string][]string)
}
