package scanner

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Excluder decides whether a cleanup candidate matches a user exclusion.
//
// Relative patterns use gitignore syntax anchored at the scan root and are
// tested against the candidate and each of its ancestors below the root, so
// excluding a directory excludes everything inside it. Absolute patterns are
// doublestar globs tested against the candidate's absolute path.
type Excluder struct {
	root   string
	ignore gitignore.GitIgnore
	globs  []string
}

// NewExcluder compiles patterns for the scan root. Patterns that cannot be
// parsed are dropped; Config.Validate reports them up front.
func NewExcluder(root string, patterns []string) *Excluder {
	e := &Excluder{root: filepath.Clean(root)}

	var relative []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if filepath.IsAbs(pattern) {
			e.globs = append(e.globs, filepath.ToSlash(filepath.Clean(pattern)))
			continue
		}
		relative = append(relative, pattern)
	}

	if len(relative) > 0 {
		e.ignore = gitignore.New(strings.NewReader(strings.Join(relative, "\n")), e.root, nil)
	}
	return e
}

// Excluded reports whether path matches an exclusion.
func (e *Excluder) Excluded(path string, isDir bool) bool {
	if e == nil {
		return false
	}
	path = filepath.Clean(path)

	for _, glob := range e.globs {
		if ok, err := doublestar.Match(glob, filepath.ToSlash(path)); err == nil && ok {
			return true
		}
	}

	if e.ignore == nil {
		return false
	}

	rel, err := filepath.Rel(e.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)

	for {
		if match := e.ignore.Relative(rel, isDir); match != nil && match.Ignore() {
			return true
		}
		idx := strings.LastIndex(rel, "/")
		if idx < 0 {
			return false
		}
		rel = rel[:idx]
		isDir = true
	}
}
