package detector

import (
	"fmt"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/manifest"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// NodeJsPriority ranks the generic detector behind every framework.
const NodeJsPriority = 200

// NodeJsDetector is the fallback for any directory with a manifest.
type NodeJsDetector struct {
	Base
}

// NewNodeJs creates the generic Node.js detector.
func NewNodeJs() *NodeJsDetector {
	return &NodeJsDetector{}
}

func (d *NodeJsDetector) Name() string  { return "nodejs" }
func (d *NodeJsDetector) Priority() int { return NodeJsPriority }

// Detect matches any directory holding a manifest. When the project has no
// parsed manifest yet, it is read here; a manifest that cannot be read or
// parsed is a detection error, not a match.
func (d *NodeJsDetector) Detect(fsys filesystem.FileSystem, p *models.Project) (bool, error) {
	if !manifest.Exists(fsys, p.Path) {
		return false, nil
	}

	if p.PackageInfo == nil {
		info, err := manifest.Read(fsys, p.Path)
		if err != nil {
			return false, fmt.Errorf("%w: %s: %w", ErrDetection, d.Name(), err)
		}
		p.PackageInfo = info
	}

	p.Type = models.ProjectTypeNodeJs
	return true, nil
}

func (d *NodeJsDetector) BuildDirs(*models.Project) []string {
	return []string{"dist", "build", "out"}
}

func (d *NodeJsDetector) CacheDirs(*models.Project) []string {
	return []string{".cache"}
}
