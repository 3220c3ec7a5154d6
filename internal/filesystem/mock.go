package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Op names an operation that can be made to fail in MockFileSystem.
type Op string

const (
	OpReadFile  Op = "readfile"
	OpReadDir   Op = "readdir"
	OpRemoveAll Op = "removeall"
	OpStat      Op = "stat"
)

const maxSymlinkHops = 40

// MockFileSystem provides in-memory filesystem for testing.
// It is safe for concurrent use.
type MockFileSystem struct {
	mu         sync.RWMutex
	files      map[string]*MockFile
	failures   map[Op]map[string]error
	currentDir string
}

// MockFile represents a file in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
	// Target is set for symlinks
	Target string
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:      make(map[string]*MockFile),
		failures:   make(map[Op]map[string]error),
		currentDir: "/workspace",
	}
}

// AddFile adds a file to the mock filesystem
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.files[cleanPath] = &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: time.Now(),
	}
	mfs.addParentsLocked(cleanPath)
}

// AddSizedFile adds a file holding size zero bytes.
func (mfs *MockFileSystem) AddSizedFile(path string, size int) {
	mfs.AddFile(path, make([]byte, size))
}

// AddDir adds a directory to the mock filesystem
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.addDirLocked(filepath.Clean(path))
}

// AddSymlink adds a symlink at path pointing to target.
// Relative targets are resolved against the link's directory.
func (mfs *MockFileSystem) AddSymlink(path, target string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.files[cleanPath] = &MockFile{
		Mode:    0777 | fs.ModeSymlink,
		ModTime: time.Now(),
		Target:  target,
	}
	mfs.addParentsLocked(cleanPath)
}

// FailOn makes op fail with err for the exact path.
func (mfs *MockFileSystem) FailOn(op Op, path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if mfs.failures[op] == nil {
		mfs.failures[op] = make(map[string]error)
	}
	mfs.failures[op][filepath.Clean(path)] = err
}

func (mfs *MockFileSystem) addDirLocked(cleanPath string) {
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.files[cleanPath] = &MockFile{
			Mode:    0755 | fs.ModeDir,
			ModTime: time.Now(),
			IsDir:   true,
		}
	}
	mfs.addParentsLocked(cleanPath)
}

func (mfs *MockFileSystem) addParentsLocked(cleanPath string) {
	dir := filepath.Dir(cleanPath)
	for dir != "." && dir != cleanPath {
		if _, exists := mfs.files[dir]; !exists {
			mfs.files[dir] = &MockFile{
				Mode:    0755 | fs.ModeDir,
				ModTime: time.Now(),
				IsDir:   true,
			}
		}
		if dir == "/" {
			break
		}
		dir = filepath.Dir(dir)
	}
}

func (mfs *MockFileSystem) failure(op Op, path string) error {
	if byPath, ok := mfs.failures[op]; ok {
		if err, ok := byPath[path]; ok {
			return err
		}
	}
	return nil
}

// resolveLocked follows symlinks in every component of path.
func (mfs *MockFileSystem) resolveLocked(path string) (string, error) {
	current := filepath.Clean(path)
	for hops := 0; hops < maxSymlinkHops; hops++ {
		resolved, followed := mfs.resolveOnceLocked(current)
		if !followed {
			return resolved, nil
		}
		current = resolved
	}
	return "", &fs.PathError{Op: "stat", Path: path, Err: errors.New("too many levels of symbolic links")}
}

func (mfs *MockFileSystem) resolveOnceLocked(path string) (string, bool) {
	parts := strings.Split(path, string(filepath.Separator))
	prefix := ""
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				prefix = string(filepath.Separator)
			}
			continue
		}
		prefix = filepath.Join(prefix, part)
		file, ok := mfs.files[prefix]
		if !ok || file.Mode&fs.ModeSymlink == 0 {
			continue
		}
		target := file.Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(prefix), target)
		}
		rest := parts[i+1:]
		return filepath.Join(append([]string{target}, rest...)...), true
	}
	return path, false
}

func (mfs *MockFileSystem) infoLocked(path string, file *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Mode,
		modTime: file.ModTime,
		isDir:   file.IsDir,
	}
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	if err := mfs.failure(OpReadFile, cleanPath); err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}

	resolved, err := mfs.resolveLocked(cleanPath)
	if err != nil {
		return nil, err
	}
	file, exists := mfs.files[resolved]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, errors.New("is a directory")
	}
	return file.Content, nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.readDirLocked(path)
}

func (mfs *MockFileSystem) readDirLocked(path string) ([]fs.DirEntry, error) {
	cleanPath := filepath.Clean(path)
	if err := mfs.failure(OpReadDir, cleanPath); err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}

	resolved, err := mfs.resolveLocked(cleanPath)
	if err != nil {
		return nil, err
	}
	file, exists := mfs.files[resolved]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !file.IsDir {
		return nil, errors.New("not a directory")
	}

	var entries []fs.DirEntry
	for p, f := range mfs.files {
		if p == resolved || filepath.Dir(p) != resolved {
			continue
		}
		entries = append(entries, &mockDirEntry{info: mfs.infoLocked(p, f)})
	}

	// Sort entries by name for consistent ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

// RemoveAll removes path and everything below it. A missing path is not an error.
func (mfs *MockFileSystem) RemoveAll(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := mfs.failure(OpRemoveAll, cleanPath); err != nil {
		return &fs.PathError{Op: "unlinkat", Path: path, Err: err}
	}

	prefix := cleanPath + string(filepath.Separator)
	for p := range mfs.files {
		if p == cleanPath || strings.HasPrefix(p, prefix) {
			delete(mfs.files, p)
		}
	}
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	if err := mfs.failure(OpStat, cleanPath); err != nil {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: err}
	}

	resolved, err := mfs.resolveLocked(cleanPath)
	if err != nil {
		return nil, err
	}
	file, exists := mfs.files[resolved]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}

	info := mfs.infoLocked(cleanPath, file)
	return info, nil
}

func (mfs *MockFileSystem) Lstat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	parent, err := mfs.resolveLocked(filepath.Dir(cleanPath))
	if err != nil {
		return nil, err
	}
	file, exists := mfs.files[filepath.Join(parent, filepath.Base(cleanPath))]
	if !exists {
		return nil, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}
	return mfs.infoLocked(cleanPath, file), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, err := mfs.Stat(path)
	return err == nil
}

func (mfs *MockFileSystem) EvalSymlinks(path string) (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.resolveLocked(path)
	if err != nil {
		return "", err
	}
	if _, exists := mfs.files[resolved]; !exists {
		return "", &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}
	return resolved, nil
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.currentDir, nil
}

// WalkDir walks the tree rooted at root in lexical order. Like filepath.WalkDir
// it does not follow symlinks below the root, and a directory that fails to be
// read is reported a second time with the error.
func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	mfs.mu.RLock()
	cleanRoot := filepath.Clean(root)
	file, exists := mfs.files[cleanRoot]
	if !exists {
		mfs.mu.RUnlock()
		return fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
	}

	type walkEntry struct {
		path    string
		entry   fs.DirEntry
		readErr error
	}

	// Collect all paths that are under root
	walk := []walkEntry{{path: cleanRoot, entry: &mockDirEntry{info: mfs.infoLocked(cleanRoot, file)}}}
	for p, f := range mfs.files {
		if strings.HasPrefix(p, cleanRoot+string(filepath.Separator)) || (cleanRoot == "/" && p != "/") {
			walk = append(walk, walkEntry{path: p, entry: &mockDirEntry{info: mfs.infoLocked(p, f)}})
		}
	}
	for i := range walk {
		if walk[i].entry.IsDir() {
			walk[i].readErr = mfs.failure(OpReadDir, walk[i].path)
		}
	}
	mfs.mu.RUnlock()

	// Sort paths for consistent ordering
	sort.Slice(walk, func(i, j int) bool { return walk[i].path < walk[j].path })

	var skipped []string
	for _, w := range walk {
		if isBelowAny(w.path, skipped) {
			continue
		}

		if err := fn(w.path, w.entry, nil); err != nil {
			if errors.Is(err, fs.SkipDir) && w.entry.IsDir() {
				skipped = append(skipped, w.path)
				continue
			}
			if errors.Is(err, fs.SkipAll) {
				return nil
			}
			return err
		}

		if w.readErr != nil {
			skipped = append(skipped, w.path)
			readErr := &fs.PathError{Op: "open", Path: w.path, Err: w.readErr}
			if err := fn(w.path, w.entry, readErr); err != nil && !errors.Is(err, fs.SkipDir) {
				return err
			}
		}
	}

	return nil
}

func isBelowAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// SetCurrentDir sets the current working directory for the mock
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.currentDir = dir
}

// Paths returns every path in the mock filesystem in lexical order.
func (mfs *MockFileSystem) Paths() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	paths := make([]string, 0, len(mfs.files))
	for p := range mfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PrintTree prints the filesystem tree (for debugging)
func (mfs *MockFileSystem) PrintTree() {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var paths []string
	for p := range mfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		file := mfs.files[p]
		marker := "file"
		if file.IsDir {
			marker = "dir "
		} else if file.Target != "" {
			marker = "link"
		}
		fmt.Printf("%s %s\n", marker, p)
	}
}
