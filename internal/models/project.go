package models

// ProjectType represents the kind of project.
//
// The set is open: plugins declare their own values alongside the built-in ones.
type ProjectType string

const (
	ProjectTypeNodeJs  ProjectType = "nodejs"
	ProjectTypeReact   ProjectType = "react"
	ProjectTypeVue     ProjectType = "vue"
	ProjectTypeAngular ProjectType = "angular"
	ProjectTypeNextJs  ProjectType = "nextjs"
	ProjectTypeNuxtJs  ProjectType = "nuxtjs"
	ProjectTypeUnknown ProjectType = "unknown"
)

// String returns the string representation of ProjectType
func (t ProjectType) String() string {
	return string(t)
}

// ManifestFile is the file that marks a directory as a project root.
const ManifestFile = "package.json"

// DependencyDir is the dependency cache directory at a project root.
// Traversal never descends into it.
const DependencyDir = "node_modules"

// PackageInfo holds the parts of package.json the cleaner cares about.
type PackageInfo struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// HasDependency reports whether name is listed in dependencies or devDependencies.
func (p *PackageInfo) HasDependency(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// SizeInfo aggregates measured target sizes by category.
// It is a snapshot taken at scan time, not an authoritative figure.
type SizeInfo struct {
	NodeModules  int64 `json:"nodeModules"`
	BuildDirs    int64 `json:"buildDirs"`
	CacheDirs    int64 `json:"cacheDirs"`
	CoverageDirs int64 `json:"coverageDirs"`
	Custom       int64 `json:"custom"`
	Total        int64 `json:"total"`
}

// Project represents a discovered project directory.
type Project struct {
	// Path is the absolute path to the project root (identity key)
	Path string `json:"path"`

	// Type is the classified project type
	Type ProjectType `json:"type"`

	// DetectedBy names the detector that classified the project.
	// Empty when no detector matched.
	DetectedBy string `json:"detectedBy,omitempty"`

	// PackageInfo is the parsed manifest, nil if it could not be read
	PackageInfo *PackageInfo `json:"package,omitempty"`

	// SizeInfo is only populated when statistics are requested
	SizeInfo *SizeInfo `json:"size,omitempty"`

	// Targets are the cleanup candidates in plan order
	Targets []CleanTarget `json:"targets"`
}

// NewProject creates a new Project instance
func NewProject(path string) *Project {
	return &Project{
		Path: path,
		Type: ProjectTypeUnknown,
	}
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	if p.PackageInfo != nil {
		info := *p.PackageInfo
		info.Dependencies = cloneMap(p.PackageInfo.Dependencies)
		info.DevDependencies = cloneMap(p.PackageInfo.DevDependencies)
		c.PackageInfo = &info
	}
	if p.SizeInfo != nil {
		size := *p.SizeInfo
		c.SizeInfo = &size
	}
	if p.Targets != nil {
		c.Targets = append([]CleanTarget(nil), p.Targets...)
	}
	return &c
}

// ComputeSizeInfo sums the measured target sizes by category.
func (p *Project) ComputeSizeInfo() *SizeInfo {
	info := &SizeInfo{}
	for _, target := range p.Targets {
		if target.Size == nil {
			continue
		}
		size := *target.Size
		info.Total += size
		switch target.Type {
		case TargetNodeModules:
			info.NodeModules += size
		case TargetBuildDir:
			info.BuildDirs += size
		case TargetCacheDir:
			info.CacheDirs += size
		case TargetCoverage:
			info.CoverageDirs += size
		case TargetCustom:
			info.Custom += size
		}
	}
	return info
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
