// Package validator classifies a folder as a deployable static site.
package validator

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"launchpd/internal/ignore"
)

// Result is the outcome of validating a folder. Violations holds
// folder-relative slash paths, sorted and free of duplicates.
type Result struct {
	Success    bool     `json:"success"`
	Violations []string `json:"violations"`
}

// Names that indicate a project needing a build step or a server runtime.
var forbiddenNames = map[string]struct{}{
	"package.json":       {},
	"package-lock.json":  {},
	"yarn.lock":          {},
	"pnpm-lock.yaml":     {},
	"bun.lockb":          {},
	"composer.json":      {},
	"composer.lock":      {},
	"Gemfile":            {},
	"Gemfile.lock":       {},
	"requirements.txt":   {},
	"Pipfile":            {},
	"Pipfile.lock":       {},
	"poetry.lock":        {},
	"pyproject.toml":     {},
	"go.mod":             {},
	"go.sum":             {},
	"Cargo.toml":         {},
	"Cargo.lock":         {},
	"pom.xml":            {},
	"build.gradle":       {},
	"Dockerfile":         {},
	"docker-compose.yml": {},
	"Makefile":           {},
	"tsconfig.json":      {},
	"vite.config.js":     {},
	"next.config.js":     {},
	".git":               {},
	".svn":               {},
	".hg":                {},
	".env":               {},
}

// Backend-language source extensions.
var forbiddenExts = map[string]struct{}{
	".php":  {},
	".py":   {},
	".rb":   {},
	".java": {},
	".go":   {},
	".rs":   {},
	".cs":   {},
	".c":    {},
	".cpp":  {},
	".h":    {},
	".sh":   {},
	".pl":   {},
	".jsp":  {},
	".asp":  {},
	".aspx": {},
	".cgi":  {},
	".exe":  {},
	".dll":  {},
	".so":   {},
	".ts":   {},
	".tsx":  {},
	".jsx":  {},
	".vue":  {},
	".sql":  {},
}

// Extensions a static host serves verbatim.
var allowedExts = map[string]struct{}{
	// markup
	".html": {}, ".htm": {}, ".xhtml": {},
	// styles and scripts
	".css": {}, ".js": {}, ".mjs": {}, ".cjs": {}, ".map": {}, ".wasm": {},
	// images
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {},
	".avif": {}, ".ico": {}, ".bmp": {}, ".tif": {}, ".tiff": {},
	// fonts
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	// media
	".mp4": {}, ".webm": {}, ".ogg": {}, ".ogv": {}, ".mp3": {}, ".wav": {},
	".m4a": {}, ".flac": {}, ".aac": {}, ".mov": {},
	// text and data
	".txt": {}, ".md": {}, ".json": {}, ".xml": {}, ".csv": {},
	".webmanifest": {}, ".pdf": {}, ".rss": {}, ".atom": {},
}

// Extension-less files static hosts understand.
var allowedNames = map[string]struct{}{
	"CNAME":      {},
	"_redirects": {},
	"_headers":   {},
}

// IsForbidden reports whether name marks a non-static project, either by
// exact name, a dotenv prefix or a backend-language extension.
func IsForbidden(name string) bool {
	if _, ok := forbiddenNames[name]; ok {
		return true
	}
	if strings.HasPrefix(name, ".env.") {
		return true
	}
	_, ok := forbiddenExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsAllowed reports whether a file name has a servable static extension.
func IsAllowed(name string) bool {
	if _, ok := allowedNames[name]; ok {
		return true
	}
	_, ok := allowedExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Validate walks dir and records every entry that disqualifies it. It only
// returns an error when the tree cannot be read.
func Validate(dir string) (Result, error) {
	seen := make(map[string]struct{})

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		switch {
		case IsForbidden(name):
			seen[rel] = struct{}{}
			if d.IsDir() {
				return filepath.SkipDir
			}
		case ignore.IsIgnored(name, d.IsDir()):
			if d.IsDir() {
				return filepath.SkipDir
			}
		case !d.IsDir() && !IsAllowed(name):
			seen[rel] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	violations := make([]string, 0, len(seen))
	for v := range seen {
		violations = append(violations, v)
	}
	sort.Strings(violations)

	return Result{Success: len(violations) == 0, Violations: violations}, nil
}
