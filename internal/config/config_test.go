package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.True(t, cfg.CleanNodeModules)
	require.True(t, cfg.CleanBuildDirs)
	require.True(t, cfg.CleanCacheDirs)
	require.True(t, cfg.CleanCoverageDirs)
	require.False(t, cfg.Recursive)
	require.False(t, cfg.DryRun)
	require.False(t, cfg.Force)
	require.Nil(t, cfg.MaxDepth)
	require.Nil(t, cfg.MinSize)
	require.Positive(t, cfg.Workers())
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".npmcleanrc.yml", `
recursive: true
clean_cache_dirs: false
exclude:
  - legacy/
  - /abs/**/keep
custom_targets:
  - .turbo
max_depth: 3
min_size: 10MB
threads: 4
timeout: 90s
plugins: [example]
log_level: debug
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.True(t, cfg.Recursive)
	require.False(t, cfg.CleanCacheDirs)
	require.True(t, cfg.CleanBuildDirs, "absent keys keep their defaults")
	require.Equal(t, []string{"legacy/", "/abs/**/keep"}, cfg.Exclude)
	require.Equal(t, []string{".turbo"}, cfg.CustomTargets)
	require.Equal(t, 3, *cfg.MaxDepth)
	require.Equal(t, int64(10_000_000), *cfg.MinSize)
	require.Equal(t, 4, cfg.Workers())
	require.Equal(t, 90*time.Second, cfg.Timeout)
	require.Equal(t, []string{"example"}, cfg.Plugins)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".npmcleanrc.toml", `
recursive = true
clean_node_modules = false
min_size = 2048
timeout = 30
custom_targets = [".eslintcache"]
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.True(t, cfg.Recursive)
	require.False(t, cfg.CleanNodeModules)
	require.Equal(t, int64(2048), *cfg.MinSize)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, []string{".eslintcache"}, cfg.CustomTargets)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yml"))
	require.ErrorContains(t, err, "failed to read config file")

	bad := writeFile(t, dir, "bad.yml", "recursive: [")
	_, err = LoadFile(bad)
	require.ErrorContains(t, err, "failed to parse config file")

	badSize := writeFile(t, dir, "size.yml", "min_size: lots")
	_, err = LoadFile(badSize)
	require.ErrorContains(t, err, "invalid min_size")

	badTimeout := writeFile(t, dir, "timeout.yml", "timeout: soon")
	_, err = LoadFile(badTimeout)
	require.ErrorContains(t, err, "invalid timeout format")
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()

	writeFile(t, home, ".npmcleanrc.yml", `
recursive: true
stats: true
exclude: [vendor]
custom_targets: [.turbo]
threads: 2
`)
	projectFile := writeFile(t, work, ".npmcleanrc.yaml", `
stats: false
exclude: [vendor, legacy]
custom_targets: [.turbo, .parcel-cache]
threads: 8
`)

	cfg, sources, err := Load(LoadOptions{HomeDir: home, WorkDir: work})
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(home, ".npmcleanrc.yml"), projectFile}, sources)
	require.True(t, cfg.Recursive, "user setting survives when project omits it")
	require.False(t, cfg.Stats, "project file can switch a setting off")
	require.Equal(t, 8, cfg.Threads)
	require.Equal(t, []string{"vendor", "legacy"}, cfg.Exclude)
	require.Equal(t, []string{".turbo", ".parcel-cache"}, cfg.CustomTargets)
}

func TestLoad_ExplicitPath(t *testing.T) {
	work := t.TempDir()
	writeFile(t, work, ".npmcleanrc.yml", "recursive: true")
	other := writeFile(t, t.TempDir(), "custom.yml", "force: true")

	cfg, sources, err := Load(LoadOptions{WorkDir: work, Path: other})
	require.NoError(t, err)
	require.Equal(t, []string{other}, sources)
	require.True(t, cfg.Force)
	require.False(t, cfg.Recursive, "work dir file is ignored when a path is given")

	_, _, err = Load(LoadOptions{Path: filepath.Join(work, "nope.yml")})
	require.Error(t, err)
}

func TestLoad_NoFiles(t *testing.T) {
	cfg, sources, err := Load(LoadOptions{HomeDir: t.TempDir(), WorkDir: t.TempDir()})
	require.NoError(t, err)
	require.Empty(t, sources)
	require.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	negative := -1
	negativeSize := int64(-5)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative depth", func(c *Config) { c.MaxDepth = &negative }, "max_depth"},
		{"negative min size", func(c *Config) { c.MinSize = &negativeSize }, "min_size"},
		{"negative threads", func(c *Config) { c.Threads = -2 }, "threads"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad absolute glob", func(c *Config) { c.Exclude = []string{"/ws/[abc"} }, "invalid exclude pattern"},
		{"empty exclude", func(c *Config) { c.Exclude = []string{" "} }, "must not be empty"},
		{"empty custom target", func(c *Config) { c.CustomTargets = []string{""} }, "must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestOnlyAndEnabled(t *testing.T) {
	cfg := Default()
	cfg.Only(models.TargetNodeModules)

	require.True(t, cfg.Enabled(models.TargetNodeModules))
	require.False(t, cfg.Enabled(models.TargetBuildDir))
	require.False(t, cfg.Enabled(models.TargetCacheDir))
	require.False(t, cfg.Enabled(models.TargetCoverage))
	require.True(t, cfg.Enabled(models.TargetCustom))

	cfg.Only(models.TargetBuildDir)
	require.False(t, cfg.Enabled(models.TargetNodeModules))
	require.True(t, cfg.Enabled(models.TargetBuildDir))

	cfg.Only(models.TargetCacheDir, models.TargetCoverage)
	require.False(t, cfg.Enabled(models.TargetBuildDir))
	require.True(t, cfg.Enabled(models.TargetCacheDir))
	require.True(t, cfg.Enabled(models.TargetCoverage))
}

func TestClone(t *testing.T) {
	depth := 2
	cfg := Default()
	cfg.MaxDepth = &depth
	cfg.AddExclude("a")

	clone := cfg.Clone()
	*clone.MaxDepth = 5
	clone.Exclude[0] = "b"

	require.Equal(t, 2, *cfg.MaxDepth)
	require.Equal(t, []string{"a"}, cfg.Exclude)
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{".turbo", "tmp"}, SplitList(" .turbo, ,tmp,"))
	require.Nil(t, SplitList(""))
}

func TestParseSize(t *testing.T) {
	size, err := ParseSize("1.5 KiB")
	require.NoError(t, err)
	require.Equal(t, int64(1536), size)

	size, err = ParseSize(int64(42))
	require.NoError(t, err)
	require.Equal(t, int64(42), size)

	_, err = ParseSize([]string{"x"})
	require.Error(t, err)
}
