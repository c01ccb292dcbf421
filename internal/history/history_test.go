package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyHistory(t *testing.T) {
	records, err := NewStore(t.TempDir()).All()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppendKeepsOrder(t *testing.T) {
	s := NewStore(t.TempDir())
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.Append(Record{Subdomain: "a", Version: 1, Timestamp: now, Message: "first"}))
	require.NoError(t, s.Append(Record{Subdomain: "b", Version: 1, Timestamp: now, Message: "other"}))
	require.NoError(t, s.Append(Record{Subdomain: "a", Version: 2, Timestamp: now, Message: "second"}))

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[2].Message)

	mine, err := s.ForSubdomain("a")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, 1, mine[0].Version)
	assert.Equal(t, 2, mine[1].Version)
}

func TestCorruptHistory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0o600))

	_, err := NewStore(dir).All()
	assert.Error(t, err)
	assert.Error(t, NewStore(dir).Append(Record{Subdomain: "a", Version: 1}))
}

func TestExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.False(t, Record{}.Expired(now))
	assert.True(t, Record{ExpiresAt: &past}.Expired(now))
	assert.False(t, Record{ExpiresAt: &future}.Expired(now))
}
