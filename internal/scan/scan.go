// Package scan enumerates the files of a deployable folder.
//
// Every caller (validation aside) sees the folder through Files, so the set
// of files that is counted, sized and uploaded is always the same one.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"launchpd/internal/ignore"
)

// File is one deployable file.
type File struct {
	// Folder-relative path using forward slashes (e.g., "css/site.css").
	Path string
	// Absolute filesystem path.
	AbsPath string
	// Lowercased extension (e.g., ".html"); empty for files without one.
	Ext string
}

// Files walks root recursively and returns every file that is not excluded
// by the ignore filter. Ignored directories are not descended into.
func Files(root string) ([]File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	var files []File
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == abs {
			return nil
		}
		if ignore.IsIgnored(d.Name(), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		files = append(files, File{
			Path:    filepath.ToSlash(rel),
			AbsPath: path,
			Ext:     strings.ToLower(filepath.Ext(path)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}

// TotalSize sums the on-disk size of files. Files that disappeared since the
// scan are skipped.
func TotalSize(files []File) int64 {
	var total int64
	for _, f := range files {
		info, err := os.Stat(f.AbsPath)
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}
