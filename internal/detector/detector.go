// Package detector classifies project directories and supplies the names of
// the disposable directories for each project type.
package detector

import (
	"errors"
	"path/filepath"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// ErrDetection marks an unrecoverable I/O failure inside a detector.
var ErrDetection = errors.New("detection failed")

const (
	// DefaultPriority is used by detectors that do not override Priority.
	DefaultPriority = 100

	// DefaultCoverageDir is the conventional coverage report directory.
	DefaultCoverageDir = "coverage"
)

// Detector recognizes one project type.
//
// Detect must be idempotent and must only report a match on evidence: a
// manifest dependency key or a well-known config file. On a match it sets the
// project's Type. The directory-list methods are pure functions of the
// project type and perform no I/O. Lower Priority values win.
type Detector interface {
	Name() string
	Priority() int
	Detect(fsys filesystem.FileSystem, p *models.Project) (bool, error)
	BuildDirs(p *models.Project) []string
	CacheDirs(p *models.Project) []string
	CoverageDirs(p *models.Project) []string
}

// Base provides the default Priority, CacheDirs and CoverageDirs. Embed it
// in a detector and override what differs.
type Base struct{}

func (Base) Priority() int { return DefaultPriority }

func (Base) CacheDirs(*models.Project) []string { return nil }

func (Base) CoverageDirs(*models.Project) []string { return []string{DefaultCoverageDir} }

// hasAnyFile reports whether one of names exists directly below dir.
func hasAnyFile(fsys filesystem.FileSystem, dir string, names ...string) bool {
	for _, name := range names {
		if fsys.Exists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

func copyDirs(dirs []string) []string {
	if len(dirs) == 0 {
		return nil
	}
	return append([]string(nil), dirs...)
}
