package plugin

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/npm-clean/internal/detector"
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/models"
)

const (
	// ExamplePluginName is the catalog name of the example plugin
	ExamplePluginName = "example"

	// ProjectTypeExample is the project type declared by the example detector
	ProjectTypeExample models.ProjectType = "example"

	exampleConfigFile = "example.config.js"
)

// ExamplePlugin demonstrates the plugin surface: it contributes a detector
// for projects carrying example.config.js and logs every lifecycle hook.
type ExamplePlugin struct {
	log logger.Logger
}

// NewExamplePlugin creates the example plugin. A nil logger discards output.
func NewExamplePlugin(log logger.Logger) *ExamplePlugin {
	if log == nil {
		log = logger.Nop()
	}
	return &ExamplePlugin{log: log}
}

func (p *ExamplePlugin) Name() string        { return ExamplePluginName }
func (p *ExamplePlugin) Version() string     { return "0.1.0" }
func (p *ExamplePlugin) Description() string { return "Detects example.config.js projects and logs lifecycle hooks" }

func (p *ExamplePlugin) Initialize() error {
	p.log.LogDebug("example plugin initialized")
	return nil
}

func (p *ExamplePlugin) Detectors() []detector.Detector {
	return []detector.Detector{NewExampleDetector()}
}

func (p *ExamplePlugin) OnHook(hook HookType, hc HookContext) error {
	switch hook {
	case HookBeforeCleaning:
		p.log.LogInfo(fmt.Sprintf("example plugin: run %s starting", hc.RunID))
	case HookAfterCleaning:
		if hc.Results != nil {
			p.log.LogInfo(fmt.Sprintf("example plugin: run %s finished, %d/%d targets cleaned",
				hc.RunID, hc.Results.CleanedTargets, hc.Results.TotalTargets))
		}
	case HookBeforeProject:
		if hc.Project != nil {
			p.log.LogDebug(fmt.Sprintf("example plugin: preparing to clean %s", hc.Project.Path))
		}
	case HookAfterProject:
		if hc.Project != nil {
			p.log.LogDebug(fmt.Sprintf("example plugin: finished %s", hc.Project.Path))
		}
	}
	return nil
}

// ExampleDetector matches directories holding example.config.js.
type ExampleDetector struct {
	detector.Base
}

// NewExampleDetector creates the example detector.
func NewExampleDetector() *ExampleDetector {
	return &ExampleDetector{}
}

func (d *ExampleDetector) Name() string  { return ExamplePluginName }
func (d *ExampleDetector) Priority() int { return 50 }

func (d *ExampleDetector) Detect(fsys filesystem.FileSystem, p *models.Project) (bool, error) {
	if !filesystem.IsFile(fsys, filepath.Join(p.Path, exampleConfigFile)) {
		return false, nil
	}
	p.Type = ProjectTypeExample
	return true, nil
}

func (d *ExampleDetector) BuildDirs(*models.Project) []string {
	return []string{"example-build", "example-dist"}
}

func (d *ExampleDetector) CacheDirs(*models.Project) []string {
	return []string{".example-cache"}
}

func (d *ExampleDetector) CoverageDirs(*models.Project) []string {
	return []string{"example-coverage"}
}
