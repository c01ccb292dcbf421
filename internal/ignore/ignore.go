// Package ignore decides which paths never take part in scanning, sizing,
// validation or upload.
package ignore

// MarkerFile is the project-link file written at a project root.
const MarkerFile = ".launchpd.yml"

// Directory names skipped wholesale: dependency and build caches, VCS
// metadata and framework output folders.
var ignoredDirs = map[string]struct{}{
	"node_modules":  {},
	".git":          {},
	".svn":          {},
	".hg":           {},
	".next":         {},
	".nuxt":         {},
	".svelte-kit":   {},
	".astro":        {},
	".vercel":       {},
	".netlify":      {},
	".turbo":        {},
	".cache":        {},
	".parcel-cache": {},
	"__pycache__":   {},
	".idea":         {},
	".vscode":       {},
	"coverage":      {},
}

// File names that are never uploaded.
var ignoredFiles = map[string]struct{}{
	"package-lock.json":   {},
	"yarn.lock":           {},
	"pnpm-lock.yaml":      {},
	"bun.lockb":           {},
	"npm-shrinkwrap.json": {},
	".DS_Store":           {},
	"Thumbs.db":           {},
	"desktop.ini":         {},
	".gitignore":          {},
	".gitattributes":      {},
	".npmrc":              {},
	MarkerFile:            {},
	"LICENSE":             {},
	"LICENSE.md":          {},
	"LICENSE.txt":         {},
	"README.md":           {},
	"readme.md":           {},
	"README":              {},
}

// IsIgnored reports whether an entry with the given base name is excluded.
// Directories are matched against the directory set only; files are matched
// against both sets.
func IsIgnored(name string, isDir bool) bool {
	if _, ok := ignoredDirs[name]; ok {
		return true
	}
	if isDir {
		return false
	}
	_, ok := ignoredFiles[name]
	return ok
}
