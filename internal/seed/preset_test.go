package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPreset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "demo.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: demo
users:
  - username: alice
    email: alice@example.com
    bio: Travel photos
    posts: 3
  - username: bob
random_users: 5
random_posts: 12
`), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	require.Len(t, p.Users, 2)
	assert.Equal(t, "alice", p.Users[0].Username)
	assert.Equal(t, 3, p.Users[0].Posts)
	assert.Equal(t, "bob", p.Users[1].Username)
	assert.Zero(t, p.Users[1].Posts)
	assert.Equal(t, 5, p.RandomUsers)
	assert.Equal(t, 12, p.RandomPosts)
}

func TestLoadPreset_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadPreset(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadPreset_BadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("users: [unclosed"), 0o644))

	_, err := LoadPreset(path)
	assert.Error(t, err)
}
