package scan

import (
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpd/internal/testutil"
)

func paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}

func TestFilesSkipsIgnoredPaths(t *testing.T) {
	root := testutil.Site(t, map[string]string{
		"index.html":                  "<h1>hi</h1>",
		"css/site.css":                "body{}",
		"img/Logo.PNG":                "png",
		"node_modules/lib/index.js":   "module.exports = 1",
		".git/HEAD":                   "ref: refs/heads/main",
		"package-lock.json":           "{}",
		".launchpd.yml":               "subdomain: demo",
		"nested/node_modules/deep.js": "x",
	})

	files, err := Files(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"css/site.css", "img/Logo.PNG", "index.html"}, paths(files))
	for _, f := range files {
		if f.Path == "img/Logo.PNG" {
			assert.Equal(t, ".png", f.Ext)
		}
	}
}

func TestFilesMissingRoot(t *testing.T) {
	_, err := Files("/definitely/not/here")
	require.Error(t, err)
}

func TestTotalSizeSkipsVanishedFiles(t *testing.T) {
	root := testutil.Site(t, map[string]string{
		"index.html": "0123456789",
		"gone.css":   "abcde",
	})
	files, err := Files(root)
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		if f.Path == "gone.css" {
			require.NoError(t, os.Remove(f.AbsPath))
		}
	}

	assert.Equal(t, int64(10), TotalSize(files))
}

func TestIgnoredSubtreeNeverCounted(t *testing.T) {
	root := testutil.Site(t, map[string]string{
		"index.html":                "0123456789",
		"node_modules/huge/blob.js": "lots of bytes that must not count",
	})
	files, err := Files(root)
	require.NoError(t, err)

	assert.Len(t, files, 1)
	assert.Equal(t, int64(10), TotalSize(files))
}
