package scanner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// DetermineTargets plans the cleanup candidates of a classified project.
//
// Candidates are collected in a fixed order: node_modules, build, cache and
// coverage directories of the governing detector, then custom targets.
// node_modules and custom targets are always collected; the other categories
// follow their config switch. A custom target naming an already collected
// path takes over that entry, so it stays eligible whatever the switches say.
// Only existing paths are kept, excluded and duplicate paths are dropped, and
// sizes are measured when stats are on.
func (s *Scanner) DetermineTargets(project *models.Project, excluder *Excluder) []models.CleanTarget {
	var candidates []models.CleanTarget

	nodeModules := filepath.Join(project.Path, models.DependencyDir)
	if filesystem.IsDir(s.fs, nodeModules) {
		candidates = append(candidates, models.NewCleanTarget(nodeModules, models.TargetNodeModules))
	}

	if d := s.chain.For(project); d != nil {
		if s.cfg.CleanBuildDirs {
			candidates = s.appendDirs(candidates, project, d.BuildDirs(project), models.TargetBuildDir)
		}
		if s.cfg.CleanCacheDirs {
			candidates = s.appendDirs(candidates, project, d.CacheDirs(project), models.TargetCacheDir)
		}
		if s.cfg.CleanCoverageDirs {
			candidates = s.appendDirs(candidates, project, d.CoverageDirs(project), models.TargetCoverage)
		}
	}

	for _, name := range s.cfg.CustomTargets {
		path, ok := resolveWithin(project.Path, name)
		if !ok {
			s.log.LogWarn(fmt.Sprintf("Ignoring custom target %q: it must stay inside the project", name))
			continue
		}
		if !s.fs.Exists(path) {
			continue
		}
		custom := models.NewCustomTarget(path, name)
		if i := slices.IndexFunc(candidates, func(c models.CleanTarget) bool { return c.Path == path }); i >= 0 {
			if candidates[i].Type != models.TargetCustom {
				candidates[i] = custom
			}
			continue
		}
		candidates = append(candidates, custom)
	}

	targets := make([]models.CleanTarget, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, dup := seen[candidate.Path]; dup {
			continue
		}
		seen[candidate.Path] = struct{}{}

		if excluder.Excluded(candidate.Path, filesystem.IsDir(s.fs, candidate.Path)) {
			s.log.LogDebug(fmt.Sprintf("Excluded %s", candidate.Path))
			continue
		}

		if s.cfg.Stats {
			candidate = candidate.WithSize(filesystem.DirSize(s.fs, candidate.Path))
		}
		s.log.LogDebug(fmt.Sprintf("Found %s target: %s", candidate.Label(), candidate.Path))
		targets = append(targets, candidate)
	}

	return targets
}

func (s *Scanner) appendDirs(candidates []models.CleanTarget, project *models.Project, names []string, targetType models.TargetType) []models.CleanTarget {
	for _, name := range names {
		path, ok := resolveWithin(project.Path, name)
		if !ok {
			continue
		}
		if filesystem.IsDir(s.fs, path) {
			candidates = append(candidates, models.NewCleanTarget(path, targetType))
		}
	}
	return candidates
}

// resolveWithin joins name onto projectPath, refusing names that would
// resolve to the project itself or escape it.
func resolveWithin(projectPath, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return "", false
	}
	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(projectPath, clean), true
}
