package projectlink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	link, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, link)

	saved, err := Save(dir, "my-site")
	require.NoError(t, err)

	link, err = Load(dir)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "my-site", link.Subdomain)
	assert.Equal(t, dir, link.Dir)
	assert.True(t, saved.CreatedAt.Equal(link.CreatedAt))
}

func TestSavePreservesCreatedAt(t *testing.T) {
	dir := t.TempDir()
	first, err := Save(dir, "old-name")
	require.NoError(t, err)

	second, err := Save(dir, "new-name")
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	link, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "new-name", link.Subdomain)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "site", "public", "assets")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	_, err := Save(root, "linked")
	require.NoError(t, err)

	link, err := Find(nested)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "linked", link.Subdomain)
	assert.Equal(t, root, link.Dir)
}

func TestFindNearestWins(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "child")
	require.NoError(t, os.MkdirAll(child, 0o755))
	_, err := Save(root, "outer")
	require.NoError(t, err)
	_, err = Save(child, "inner")
	require.NoError(t, err)

	link, err := Find(child)
	require.NoError(t, err)
	assert.Equal(t, "inner", link.Subdomain)
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("subdomain: [unclosed"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
