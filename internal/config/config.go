// Package config holds the settings of a cleaning run and loads them from
// user and project config files.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// Config is the effective configuration of a run. It is built once before
// scanning and treated as read-only afterwards.
type Config struct {
	// Exclude holds gitignore-style patterns relative to the scan root and
	// absolute doublestar globs
	Exclude []string `json:"exclude"`

	Recursive bool `json:"recursive"`
	Force     bool `json:"force"`
	DryRun    bool `json:"dryRun"`
	Stats     bool `json:"stats"`
	Verbose   bool `json:"verbose"`

	CleanNodeModules  bool `json:"cleanNodeModules"`
	CleanBuildDirs    bool `json:"cleanBuildDirs"`
	CleanCacheDirs    bool `json:"cleanCacheDirs"`
	CleanCoverageDirs bool `json:"cleanCoverageDirs"`

	// CustomTargets are file or directory names relative to each project root
	CustomTargets []string `json:"customTargets"`

	// MaxDepth limits traversal depth below the root (root = 0); nil is unbounded
	MaxDepth *int `json:"maxDepth,omitempty"`

	// MinSize skips targets whose measured size is below it
	MinSize *int64 `json:"minSize,omitempty"`

	// Threads is the worker count; 0 uses the number of CPUs
	Threads int `json:"threads"`

	// Timeout is reported but not enforced
	Timeout time.Duration `json:"timeout"`

	// Plugins names compiled-in plugins to enable
	Plugins []string `json:"plugins"`

	LogLevel string `json:"logLevel"`
	LogDir   string `json:"logDir"`
}

// Default returns the default configuration: every target category enabled,
// nothing recursive, nothing forced.
func Default() *Config {
	return &Config{
		CleanNodeModules:  true,
		CleanBuildDirs:    true,
		CleanCacheDirs:    true,
		CleanCoverageDirs: true,
		LogLevel:          "info",
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Exclude = append([]string(nil), c.Exclude...)
	clone.CustomTargets = append([]string(nil), c.CustomTargets...)
	clone.Plugins = append([]string(nil), c.Plugins...)
	if c.MaxDepth != nil {
		depth := *c.MaxDepth
		clone.MaxDepth = &depth
	}
	if c.MinSize != nil {
		size := *c.MinSize
		clone.MinSize = &size
	}
	return &clone
}

// Workers returns the effective worker count.
func (c *Config) Workers() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return runtime.NumCPU()
}

// Enabled reports whether targets of type t are switched on.
// Custom targets are always enabled.
func (c *Config) Enabled(t models.TargetType) bool {
	switch t {
	case models.TargetNodeModules:
		return c.CleanNodeModules
	case models.TargetBuildDir:
		return c.CleanBuildDirs
	case models.TargetCacheDir:
		return c.CleanCacheDirs
	case models.TargetCoverage:
		return c.CleanCoverageDirs
	case models.TargetCustom:
		return true
	default:
		return false
	}
}

// Only switches on exactly the given built-in target categories.
func (c *Config) Only(types ...models.TargetType) {
	c.CleanNodeModules = slices.Contains(types, models.TargetNodeModules)
	c.CleanBuildDirs = slices.Contains(types, models.TargetBuildDir)
	c.CleanCacheDirs = slices.Contains(types, models.TargetCacheDir)
	c.CleanCoverageDirs = slices.Contains(types, models.TargetCoverage)
}

// AddExclude appends patterns that are not already present.
func (c *Config) AddExclude(patterns ...string) {
	c.Exclude = appendUnique(c.Exclude, patterns...)
}

// AddCustomTargets appends custom target names that are not already present.
func (c *Config) AddCustomTargets(names ...string) {
	c.CustomTargets = appendUnique(c.CustomTargets, names...)
}

// AddPlugins appends plugin names that are not already present.
func (c *Config) AddPlugins(names ...string) {
	c.Plugins = appendUnique(c.Plugins, names...)
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", *c.MaxDepth)
	}
	if c.MinSize != nil && *c.MinSize < 0 {
		return fmt.Errorf("min_size must be >= 0, got %d", *c.MinSize)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if c.LogLevel != "" && !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (must be trace, debug, info, warn, or error)", c.LogLevel)
	}

	for _, pattern := range c.Exclude {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude pattern must not be empty")
		}
		if filepath.IsAbs(pattern) && !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	for _, name := range c.CustomTargets {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("custom target must not be empty")
		}
	}
	return nil
}

// SplitList splits a comma separated flag value, dropping empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func appendUnique(list []string, items ...string) []string {
	seen := make(map[string]bool, len(list)+len(items))
	for _, existing := range list {
		seen[existing] = true
	}
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		list = append(list, item)
	}
	return list
}
