package detector

import (
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// FrameworkDetector matches a JavaScript framework by dependency name or by
// the presence of its config file.
type FrameworkDetector struct {
	Base
	name         string
	projectType  models.ProjectType
	priority     int
	dependencies []string
	configFiles  []string
	buildDirs    []string
	cacheDirs    []string
}

func (d *FrameworkDetector) Name() string  { return d.name }
func (d *FrameworkDetector) Priority() int { return d.priority }

// Detect never reads anything but the already parsed manifest and the
// existence of config files, so it cannot fail.
func (d *FrameworkDetector) Detect(fsys filesystem.FileSystem, p *models.Project) (bool, error) {
	matched := false
	for _, dep := range d.dependencies {
		if p.PackageInfo.HasDependency(dep) {
			matched = true
			break
		}
	}
	if !matched && len(d.configFiles) > 0 {
		matched = hasAnyFile(fsys, p.Path, d.configFiles...)
	}

	if matched {
		p.Type = d.projectType
	}
	return matched, nil
}

func (d *FrameworkDetector) BuildDirs(*models.Project) []string {
	return copyDirs(d.buildDirs)
}

func (d *FrameworkDetector) CacheDirs(p *models.Project) []string {
	if d.cacheDirs == nil {
		return d.Base.CacheDirs(p)
	}
	return copyDirs(d.cacheDirs)
}

// NewNextJs detects Next.js projects. Next.js projects also depend on React,
// so it outranks the React detector.
func NewNextJs() *FrameworkDetector {
	return &FrameworkDetector{
		name:         "nextjs",
		projectType:  models.ProjectTypeNextJs,
		priority:     80,
		dependencies: []string{"next"},
		configFiles:  []string{"next.config.js", "next.config.mjs", "next.config.ts"},
		buildDirs:    []string{".next", "out"},
	}
}

// NewNuxtJs detects Nuxt projects, which also depend on Vue.
func NewNuxtJs() *FrameworkDetector {
	return &FrameworkDetector{
		name:         "nuxtjs",
		projectType:  models.ProjectTypeNuxtJs,
		priority:     85,
		dependencies: []string{"nuxt"},
		configFiles:  []string{"nuxt.config.js", "nuxt.config.ts"},
		buildDirs:    []string{".nuxt", "dist"},
		cacheDirs:    []string{".cache"},
	}
}

// NewAngular detects Angular workspaces.
func NewAngular() *FrameworkDetector {
	return &FrameworkDetector{
		name:         "angular",
		projectType:  models.ProjectTypeAngular,
		priority:     90,
		dependencies: []string{"@angular/core"},
		configFiles:  []string{"angular.json"},
		buildDirs:    []string{"dist"},
		cacheDirs:    []string{".angular"},
	}
}

// NewVue detects Vue projects. vite.config.* is not evidence on its own
// because Vite builds React and plain projects as well.
func NewVue() *FrameworkDetector {
	return &FrameworkDetector{
		name:         "vue",
		projectType:  models.ProjectTypeVue,
		priority:     DefaultPriority,
		dependencies: []string{"vue", "@vue/cli-service"},
		configFiles:  []string{"vue.config.js"},
		buildDirs:    []string{"dist"},
	}
}

// NewReact detects React applications.
func NewReact() *FrameworkDetector {
	return &FrameworkDetector{
		name:         "react",
		projectType:  models.ProjectTypeReact,
		priority:     DefaultPriority,
		dependencies: []string{"react"},
		buildDirs:    []string{"build", "dist"},
	}
}
