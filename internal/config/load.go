package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// FileBaseName is the base name of user and project config files.
const FileBaseName = ".npmcleanrc"

// fileExtensions lists the recognised config file extensions in lookup order.
var fileExtensions = []string{".yml", ".yaml", ".toml"}

// fileConfig mirrors Config with pointer fields so a key that is absent from
// the file leaves the lower-precedence value alone.
type fileConfig struct {
	Exclude           []string    `yaml:"exclude" toml:"exclude"`
	Recursive         *bool       `yaml:"recursive" toml:"recursive"`
	Force             *bool       `yaml:"force" toml:"force"`
	DryRun            *bool       `yaml:"dry_run" toml:"dry_run"`
	Stats             *bool       `yaml:"stats" toml:"stats"`
	Verbose           *bool       `yaml:"verbose" toml:"verbose"`
	CleanNodeModules  *bool       `yaml:"clean_node_modules" toml:"clean_node_modules"`
	CleanBuildDirs    *bool       `yaml:"clean_build_dirs" toml:"clean_build_dirs"`
	CleanCacheDirs    *bool       `yaml:"clean_cache_dirs" toml:"clean_cache_dirs"`
	CleanCoverageDirs *bool       `yaml:"clean_coverage_dirs" toml:"clean_coverage_dirs"`
	CustomTargets     []string    `yaml:"custom_targets" toml:"custom_targets"`
	MaxDepth          *int        `yaml:"max_depth" toml:"max_depth"`
	MinSize           interface{} `yaml:"min_size" toml:"min_size"`
	Threads           *int        `yaml:"threads" toml:"threads"`
	Timeout           interface{} `yaml:"timeout" toml:"timeout"`
	Plugins           []string    `yaml:"plugins" toml:"plugins"`
	LogLevel          *string     `yaml:"log_level" toml:"log_level"`
	LogDir            *string     `yaml:"log_dir" toml:"log_dir"`
}

// LoadOptions locates the config files of a run.
type LoadOptions struct {
	// HomeDir is searched for the user config file; empty skips it
	HomeDir string

	// WorkDir is searched for the project config file when Path is empty
	WorkDir string

	// Path is an explicit project config file; it must exist
	Path string
}

// Load builds the configuration from defaults, the user file and the project
// file, in increasing precedence. It returns the files that were applied.
func Load(opts LoadOptions) (*Config, []string, error) {
	cfg := Default()
	var sources []string

	if opts.HomeDir != "" {
		if path, ok := findFile(opts.HomeDir); ok {
			if err := cfg.ApplyFile(path); err != nil {
				return nil, nil, fmt.Errorf("failed to load user config: %w", err)
			}
			sources = append(sources, path)
		}
	}

	projectPath := opts.Path
	if projectPath == "" && opts.WorkDir != "" {
		if path, ok := findFile(opts.WorkDir); ok {
			projectPath = path
		}
	}
	if projectPath != "" {
		if err := cfg.ApplyFile(projectPath); err != nil {
			return nil, nil, fmt.Errorf("failed to load config from %s: %w", projectPath, err)
		}
		sources = append(sources, projectPath)
	}

	return cfg, sources, nil
}

// LoadFile reads a single config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFile merges the keys present in the file at path into c. The format
// is chosen by extension: .toml is TOML, anything else YAML.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return c.merge(&fc)
}

func (c *Config) merge(fc *fileConfig) error {
	setBool(&c.Recursive, fc.Recursive)
	setBool(&c.Force, fc.Force)
	setBool(&c.DryRun, fc.DryRun)
	setBool(&c.Stats, fc.Stats)
	setBool(&c.Verbose, fc.Verbose)
	setBool(&c.CleanNodeModules, fc.CleanNodeModules)
	setBool(&c.CleanBuildDirs, fc.CleanBuildDirs)
	setBool(&c.CleanCacheDirs, fc.CleanCacheDirs)
	setBool(&c.CleanCoverageDirs, fc.CleanCoverageDirs)

	c.AddExclude(fc.Exclude...)
	c.AddCustomTargets(fc.CustomTargets...)
	c.AddPlugins(fc.Plugins...)

	if fc.MaxDepth != nil {
		depth := *fc.MaxDepth
		c.MaxDepth = &depth
	}
	if fc.Threads != nil {
		c.Threads = *fc.Threads
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogDir != nil {
		c.LogDir = *fc.LogDir
	}

	if fc.MinSize != nil {
		size, err := ParseSize(fc.MinSize)
		if err != nil {
			return err
		}
		c.MinSize = &size
	}
	if fc.Timeout != nil {
		timeout, err := parseTimeout(fc.Timeout)
		if err != nil {
			return err
		}
		c.Timeout = timeout
	}
	return nil
}

// ParseSize accepts a byte count or a human readable size such as "10MB".
func ParseSize(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		size, err := humanize.ParseBytes(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid min_size %q: %w", v, err)
		}
		return int64(size), nil
	default:
		return 0, fmt.Errorf("invalid min_size %v", value)
	}
}

// parseTimeout accepts a Go duration string or a number of seconds.
func parseTimeout(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		timeout, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid timeout format %q: %w", v, err)
		}
		return timeout, nil
	default:
		return 0, fmt.Errorf("invalid timeout %v", value)
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// findFile returns the first .npmcleanrc file in dir.
func findFile(dir string) (string, bool) {
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, FileBaseName+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, true
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			// unreadable candidates are surfaced by ApplyFile
			return path, true
		}
	}
	return "", false
}
