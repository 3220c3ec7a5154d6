// Package scanner discovers projects below a root directory, classifies them
// and plans their cleanup targets.
package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakoblorz/npm-clean/internal/config"
	"github.com/jakoblorz/npm-clean/internal/detector"
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/manifest"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/jakoblorz/npm-clean/internal/parallel"
)

// ErrRootUnreadable is returned when the scan root cannot be used at all.
var ErrRootUnreadable = errors.New("root directory unreadable")

// Scanner finds and analyzes projects.
type Scanner struct {
	fs    filesystem.FileSystem
	cfg   *config.Config
	chain *detector.Chain
	log   logger.Logger
}

// Option configures scanner behavior.
type Option func(*Scanner)

// WithChain replaces the built-in detector chain.
func WithChain(chain *detector.Chain) Option {
	return func(s *Scanner) {
		s.chain = chain
	}
}

// WithLogger sets the logger for discovery and analysis messages.
func WithLogger(log logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// New creates a Scanner. cfg must not be modified while scans are running.
func New(fs filesystem.FileSystem, cfg *config.Config, options ...Option) *Scanner {
	s := &Scanner{
		fs:  fs,
		cfg: cfg,
	}

	for _, option := range options {
		option(s)
	}

	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.chain == nil {
		s.chain = detector.NewBuiltinChain()
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// Chain returns the detector chain used for classification.
func (s *Scanner) Chain() *detector.Chain {
	return s.chain
}

// Scan discovers the projects below root and plans their targets. Projects
// are returned in discovery order. Only an unusable root is fatal.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*models.Project, error) {
	s.log.LogInfo(fmt.Sprintf("Scanning directory: %s", root))

	paths, err := s.FindProjectPaths(root)
	if err != nil {
		return nil, err
	}
	s.log.LogInfo(fmt.Sprintf("Found %d potential projects", len(paths)))

	excluder := NewExcluder(root, s.cfg.Exclude)
	projects := s.AnalyzeProjects(ctx, paths, excluder)
	if err := ctx.Err(); err != nil {
		return projects, fmt.Errorf("scan interrupted: %w", err)
	}

	s.log.LogInfo(fmt.Sprintf("Successfully analyzed %d projects", len(projects)))
	return projects, nil
}

// AnalyzeProjects analyzes paths on the worker pool. A path that fails
// analysis is logged and dropped; the rest keep their input order.
func (s *Scanner) AnalyzeProjects(ctx context.Context, paths []string, excluder *Excluder) []*models.Project {
	results := parallel.Map(ctx, paths, s.cfg.Workers(), func(_ context.Context, _ int, path string) (*models.Project, error) {
		return s.AnalyzeProject(path, excluder)
	})

	projects := make([]*models.Project, 0, len(paths))
	for i, result := range results {
		if !result.Launched {
			continue
		}
		if result.Err != nil {
			s.log.LogWarn(fmt.Sprintf("Failed to analyze project at %s: %v", paths[i], result.Err))
			continue
		}
		projects = append(projects, result.Value)
	}
	return projects
}

// AnalyzeProject reads the manifest of the project at path, classifies it
// and plans its targets.
func (s *Scanner) AnalyzeProject(path string, excluder *Excluder) (*models.Project, error) {
	s.log.LogDebug(fmt.Sprintf("Analyzing project at %s", path))

	if !filesystem.IsDir(s.fs, path) {
		return nil, fmt.Errorf("failed to analyze %s: not a directory", path)
	}

	project := models.NewProject(path)
	s.readManifest(project)

	d, err := s.chain.Classify(s.fs, project)
	if err != nil {
		s.log.LogDebug(fmt.Sprintf("Detector error for %s: %v", path, err))
	}
	if d != nil {
		s.log.LogDebug(fmt.Sprintf("Project at %s detected as %s", path, project.Type))
	} else {
		s.log.LogDebug(fmt.Sprintf("No detector matched %s", path))
	}

	project.Targets = s.DetermineTargets(project, excluder)
	if s.cfg.Stats {
		project.SizeInfo = project.ComputeSizeInfo()
	}

	return project, nil
}

// readManifest attaches the parsed manifest. A manifest that cannot be read
// leaves PackageInfo nil; detection still runs on config files.
func (s *Scanner) readManifest(project *models.Project) {
	if !manifest.Exists(s.fs, project.Path) {
		return
	}
	info, err := manifest.Read(s.fs, project.Path)
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("Failed to read manifest of %s: %v", project.Path, err))
		return
	}
	project.PackageInfo = info
}
