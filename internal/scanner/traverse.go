package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/manifest"
	"github.com/jakoblorz/npm-clean/internal/models"
)

type queuedDir struct {
	path  string
	depth int
}

// FindProjectPaths walks root breadth-first and returns every directory that
// holds a manifest, in discovery order.
//
// Each directory is visited once by its canonical path, so symlink cycles
// terminate. node_modules is never entered. Below a project the walk only
// continues in recursive mode, and never past MaxDepth.
func (s *Scanner) FindProjectPaths(root string) ([]string, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, root)
	}
	if _, err := s.fs.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}

	var projectPaths []string
	visited := make(map[string]struct{})
	queue := []queuedDir{{path: root, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		canonical, err := s.fs.EvalSymlinks(current.path)
		if err != nil {
			s.log.LogWarn(fmt.Sprintf("Skipping %s: %v", current.path, err))
			continue
		}
		if _, seen := visited[canonical]; seen {
			continue
		}
		visited[canonical] = struct{}{}

		if manifest.Exists(s.fs, current.path) {
			s.log.LogDebug(fmt.Sprintf("Found project at %s", current.path))
			projectPaths = append(projectPaths, current.path)

			if !s.cfg.Recursive {
				continue
			}
		}

		if s.cfg.MaxDepth != nil && current.depth >= *s.cfg.MaxDepth {
			continue
		}

		entries, err := s.fs.ReadDir(current.path)
		if err != nil {
			s.log.LogWarn(fmt.Sprintf("Skipping unreadable directory %s: %v", current.path, err))
			continue
		}

		for _, entry := range entries {
			if entry.Name() == models.DependencyDir {
				continue
			}
			child := filepath.Join(current.path, entry.Name())
			if !s.isTraversableDir(entry, child) {
				continue
			}
			queue = append(queue, queuedDir{path: child, depth: current.depth + 1})
		}
	}

	return projectPaths, nil
}

// isTraversableDir reports whether entry is a directory or a symlink to one.
func (s *Scanner) isTraversableDir(entry fs.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	return filesystem.IsDir(s.fs, path)
}
