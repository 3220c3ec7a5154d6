// Package testutil builds in-memory project trees for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// TreeBuilder helps create test directory trees
type TreeBuilder struct {
	fs   *filesystem.MockFileSystem
	root string
}

// NewTreeBuilder creates a new TreeBuilder rooted at root
func NewTreeBuilder(root string) *TreeBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(root)

	return &TreeBuilder{
		fs:   fs,
		root: root,
	}
}

// Root returns the absolute root of the tree
func (tb *TreeBuilder) Root() string {
	return tb.root
}

// Path resolves a path relative to the root
func (tb *TreeBuilder) Path(rel string) string {
	return filepath.Join(tb.root, rel)
}

// AddProject adds a project whose package.json lists deps as dependencies
func (tb *TreeBuilder) AddProject(path string, deps ...string) *TreeBuilder {
	dependencies := make(map[string]string, len(deps))
	for _, dep := range deps {
		dependencies[dep] = "^1.0.0"
	}

	manifest := map[string]interface{}{
		"name":         filepath.Base(path),
		"version":      "1.0.0",
		"dependencies": dependencies,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("failed to marshal manifest: %v", err))
	}

	return tb.AddManifest(path, string(data))
}

// AddManifest adds a package.json with raw content
func (tb *TreeBuilder) AddManifest(path, content string) *TreeBuilder {
	tb.fs.AddFile(filepath.Join(tb.root, path, models.ManifestFile), []byte(content))
	return tb
}

// AddArtifact adds a directory below a project holding one file of size bytes
func (tb *TreeBuilder) AddArtifact(projectPath, dir string, size int) *TreeBuilder {
	tb.fs.AddSizedFile(filepath.Join(tb.root, projectPath, dir, "artifact.bin"), size)
	return tb
}

// AddFile adds a file relative to the root
func (tb *TreeBuilder) AddFile(path string, size int) *TreeBuilder {
	tb.fs.AddSizedFile(filepath.Join(tb.root, path), size)
	return tb
}

// AddDir adds an empty directory relative to the root
func (tb *TreeBuilder) AddDir(path string) *TreeBuilder {
	tb.fs.AddDir(filepath.Join(tb.root, path))
	return tb
}

// AddSymlink adds a symlink at path (relative to the root) pointing to target
func (tb *TreeBuilder) AddSymlink(path, target string) *TreeBuilder {
	tb.fs.AddSymlink(filepath.Join(tb.root, path), target)
	return tb
}

// FailOn makes op fail for a path relative to the root
func (tb *TreeBuilder) FailOn(op filesystem.Op, path string, err error) *TreeBuilder {
	tb.fs.FailOn(op, filepath.Join(tb.root, path), err)
	return tb
}

// Build returns the populated filesystem
func (tb *TreeBuilder) Build() *filesystem.MockFileSystem {
	return tb.fs
}
