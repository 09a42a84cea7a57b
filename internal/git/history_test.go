package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCache_LatestTag(t *testing.T) {
	client := NewMockGitClient()
	client.SetHead("aaa1111", "feat: first")
	client.SetLatestTag("v1.0.0")

	cache := NewHistoryCache(client)

	tag, err := cache.LatestTag()
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", tag)

	// A newer tag is not visible until HEAD moves.
	client.SetLatestTag("v1.1.0")
	tag, err = cache.LatestTag()
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", tag)

	client.SetHead("bbb2222", "feat: second")
	tag, err = cache.LatestTag()
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", tag)
}

func TestHistoryCache_CommitMessages(t *testing.T) {
	client := NewMockGitClient()
	client.SetHead("aaa1111", "fix: current")
	client.SetCommitMessages("fix: current", "feat: earlier")

	cache := NewHistoryCache(client)

	messages, err := cache.CommitMessagesSince("v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"fix: current", "feat: earlier"}, messages)

	client.SetCommitMessages("chore: unseen")
	messages, err = cache.CommitMessagesSince("v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"fix: current", "feat: earlier"}, messages)

	client.SetHead("bbb2222", "chore: unseen")
	messages, err = cache.CommitMessagesSince("v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"chore: unseen"}, messages)
}

func TestHistoryCache_Invalidate(t *testing.T) {
	client := NewMockGitClient()
	client.SetHead("aaa1111", "feat: first")
	client.SetLatestTag("v1.0.0")

	cache := NewHistoryCache(client)

	_, err := cache.LatestTag()
	require.NoError(t, err)

	client.SetLatestTag("v2.0.0")
	cache.Invalidate()

	tag, err := cache.LatestTag()
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", tag)
}

func TestNormalizeRemoteURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"ssh shorthand", "git@github.com:acme/widget.git", "https://github.com/acme/widget"},
		{"ssh scheme", "ssh://git@github.com/acme/widget.git", "https://github.com/acme/widget"},
		{"https with suffix", "https://github.com/acme/widget.git", "https://github.com/acme/widget"},
		{"https plain", "https://github.com/acme/widget", "https://github.com/acme/widget"},
		{"other host", "git@gitlab.example.com:team/tool.git", "https://gitlab.example.com/team/tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRemoteURL(tt.url))
		})
	}
}
