package upload

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpd/internal/api"
	"launchpd/internal/scan"
	"launchpd/internal/testutil"
)

type fakeAPI struct {
	uploads   []api.Upload
	completed []api.Completion
	failOn    string
}

func (f *fakeAPI) UploadFile(_ context.Context, u api.Upload) error {
	if u.Path == f.failOn {
		return &api.Error{Kind: api.KindNetwork, Message: "connection reset"}
	}
	f.uploads = append(f.uploads, u)
	return nil
}

func (f *fakeAPI) CompleteUpload(_ context.Context, done api.Completion) (*api.CompletionResult, error) {
	f.completed = append(f.completed, done)
	return &api.CompletionResult{Success: true}, nil
}

func uploadSite(t *testing.T, e *Engine, ctx context.Context, root, sub string, version int, onProgress func(Progress)) (Summary, error) {
	t.Helper()
	files, err := scan.Files(root)
	require.NoError(t, err)
	return e.UploadFiles(ctx, files, sub, version, onProgress)
}

func TestUploadFiles(t *testing.T) {
	root := testutil.Site(t, map[string]string{
		"index.html":              "<h1>hi</h1>",
		"css/site.css":            "body{}",
		"node_modules/x/index.js": "ignored",
		"package-lock.json":       "{}",
	})
	f := &fakeAPI{}
	var progress []Progress

	sum, err := uploadSite(t, NewEngine(f, 0), context.Background(), root, "demo", 2, func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Uploaded)
	assert.EqualValues(t, len("<h1>hi</h1>")+len("body{}"), sum.TotalBytes)

	var paths []string
	for _, u := range f.uploads {
		paths = append(paths, u.Path)
		assert.Equal(t, "demo", u.Subdomain)
		assert.Equal(t, 2, u.Version)
		switch u.Path {
		case "index.html":
			assert.True(t, strings.HasPrefix(u.ContentType, "text/html"))
		case "css/site.css":
			assert.True(t, strings.HasPrefix(u.ContentType, "text/css"))
		}
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"css/site.css", "index.html"}, paths)

	require.Len(t, progress, 2)
	assert.Equal(t, 2, progress[1].Done)
	assert.Equal(t, 2, progress[1].Total)
}

func TestUploadStopsAtFirstFailure(t *testing.T) {
	root := testutil.Site(t, map[string]string{"a.html": "a", "b.html": "b", "c.html": "c"})
	f := &fakeAPI{failOn: "b.html"}

	_, err := uploadSite(t, NewEngine(f, 0), context.Background(), root, "demo", 1, nil)
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindNetwork))
	assert.Contains(t, err.Error(), "b.html")
	assert.Empty(t, f.completed)
}

func TestUploadHonoursCancellation(t *testing.T) {
	root := testutil.Site(t, map[string]string{"a.html": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uploadSite(t, NewEngine(&fakeAPI{}, 1), ctx, root, "demo", 1, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFinalize(t *testing.T) {
	f := &fakeAPI{}
	_, err := NewEngine(f, 0).Finalize(context.Background(), api.Completion{Subdomain: "demo", Version: 1, FileCount: 1, Message: "first"})
	require.NoError(t, err)
	require.Len(t, f.completed, 1)
	assert.Equal(t, "first", f.completed[0].Message)
}

func TestContentType(t *testing.T) {
	assert.True(t, strings.HasPrefix(ContentType(".svg", nil), "image/svg+xml"))
	assert.Equal(t, "image/png", ContentType("", []byte("\x89PNG\r\n\x1a\n0000")))
	assert.True(t, strings.HasPrefix(ContentType(".unknownext", []byte("plain words")), "text/plain"))
}
