package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpd/internal/api"
	"launchpd/internal/failfast"
	"launchpd/internal/history"
	"launchpd/internal/metadata"
	"launchpd/internal/versions"
)

func TestAPIFailure(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&api.Error{Kind: api.KindMaintenance}, "maintenance"},
		{&api.Error{Kind: api.KindNetwork}, "Could not connect"},
		{&api.Error{Kind: api.KindAuth}, "Authentication failed"},
		{&api.Error{Kind: api.KindRateLimit}, "Too many requests"},
		{errors.New("boom"), "Could not fetch things"},
	}
	for _, tt := range tests {
		f, ok := failfast.As(apiFailure("fetch things", tt.err))
		require.True(t, ok)
		assert.Contains(t, f.Message, tt.want)
	}
}

func TestRollbackFailure(t *testing.T) {
	err := rollbackFailure("site", &versions.NotFoundError{Version: 9, Available: []int{3, 2, 1}})
	f, ok := failfast.As(err)
	require.True(t, ok)
	assert.Contains(t, f.Message, "available: 3, 2, 1")

	f, _ = failfast.As(rollbackFailure("site", versions.ErrCannotRollbackFurther))
	assert.Contains(t, f.Message, "Cannot rollback further")
}

func TestFromHistoryFlagsNewestWithoutPointer(t *testing.T) {
	now := time.Now()
	deps, err := fromHistory([]history.Record{
		{Subdomain: "a", Version: 1, Timestamp: now},
		{Subdomain: "a", Version: 2, Timestamp: now},
		{Subdomain: "b", Version: 1, Timestamp: now},
	}, metadata.NewLocalStore(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, deps, 3)
	assert.False(t, deps[0].IsActive)
	assert.True(t, deps[1].IsActive)
	assert.True(t, deps[2].IsActive)
}

func TestFromHistoryFollowsActivePointer(t *testing.T) {
	pointer := metadata.NewLocalStore(t.TempDir())
	require.NoError(t, pointer.SetActive("site", 1))

	now := time.Now()
	deps, err := fromHistory([]history.Record{
		{Subdomain: "site", Version: 1, Timestamp: now},
		{Subdomain: "site", Version: 2, Timestamp: now},
		{Subdomain: "other", Version: 3, Timestamp: now},
	}, pointer)
	require.NoError(t, err)
	require.Len(t, deps, 3)
	assert.True(t, deps[0].IsActive, "v1 was rolled back to")
	assert.False(t, deps[1].IsActive)
	assert.True(t, deps[2].IsActive)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
