package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLoadMissingIsAnonymous(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir())

	creds, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestSaveLoadKeepsSecretInKeyring(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.Save(&Credentials{APIKey: "lpd_abc", APISecret: "s3cret", Email: "dev@example.com", Tier: "pro"}))

	raw, err := os.ReadFile(filepath.Join(dir, credentialsFile))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")

	info, err := os.Stat(filepath.Join(dir, credentialsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	creds, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "lpd_abc", creds.APIKey)
	assert.Equal(t, "s3cret", creds.APISecret)
	assert.Equal(t, "pro", creds.Tier)
	assert.False(t, creds.SavedAt.IsZero())
}

func TestSaveFallsBackToFileWithoutKeyring(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keyring"))
	t.Cleanup(keyring.MockInit)
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.Save(&Credentials{APIKey: "lpd_abc", APISecret: "s3cret"}))

	raw, err := os.ReadFile(filepath.Join(dir, credentialsFile))
	require.NoError(t, err)
	var onDisk Credentials
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, "s3cret", onDisk.APISecret)

	creds, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", creds.APISecret)
}

func TestSaveRequiresKey(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, NewStore(t.TempDir()).Save(&Credentials{}))
}

func TestClear(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(&Credentials{APIKey: "lpd_abc", APISecret: "x"}))

	require.NoError(t, s.Clear())
	creds, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)

	_, err = keyring.Get(keyringService, keyringSecret)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	require.NoError(t, s.Clear())
}

func TestClientTokenIsStable(t *testing.T) {
	s := NewStore(t.TempDir())

	first, err := s.ClientToken()
	require.NoError(t, err)
	assert.True(t, ValidToken(first), first)

	second, err := s.ClientToken()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidToken(t *testing.T) {
	assert.True(t, ValidToken(NewToken()))
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken("cli_xyz"))
	assert.False(t, ValidToken("tok_0123456789abcdef0123456789abcdef"))
	assert.False(t, ValidToken("cli_0123456789ABCDEF0123456789ABCDEF"))
}

func TestResolve(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir())

	id, err := s.Resolve("", "", "public-beta-key")
	require.NoError(t, err)
	assert.False(t, id.Authenticated)
	assert.Equal(t, "public-beta-key", id.APIKey)

	require.NoError(t, s.Save(&Credentials{APIKey: "lpd_stored", APISecret: "stored"}))
	id, err = s.Resolve("", "", "public-beta-key")
	require.NoError(t, err)
	assert.True(t, id.Authenticated)
	assert.Equal(t, "lpd_stored", id.APIKey)
	assert.Equal(t, "stored", id.APISecret)

	id, err = s.Resolve("lpd_env", "envsecret", "public-beta-key")
	require.NoError(t, err)
	assert.True(t, id.Authenticated)
	assert.Equal(t, "lpd_env", id.APIKey)
	assert.Equal(t, "envsecret", id.APISecret)
}
