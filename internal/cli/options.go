package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/npm-clean/internal/config"
	"github.com/jakoblorz/npm-clean/internal/detector"
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/jakoblorz/npm-clean/internal/plugin"
	"github.com/jakoblorz/npm-clean/internal/report"
	"github.com/spf13/cobra"
)

// runOptions holds the flag values shared by the clean and scan commands.
type runOptions struct {
	configPath      string
	recursive       bool
	stats           bool
	verbose         bool
	nodeModulesOnly bool
	buildOnly       bool
	include         string
	exclude         string
	maxDepth        int
	threads         int
	plugins         []string
	format          string
	logLevel        string
	logDir          string

	// clean only
	force    bool
	dryRun   bool
	minSize  string
	template string

	// homeDir is searched for the user config file
	homeDir string
}

func newRunOptions() *runOptions {
	home, _ := os.UserHomeDir()
	return &runOptions{homeDir: home}
}

func (o *runOptions) addPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "Config file (default: ./"+config.FileBaseName+".yml)")
	flags.BoolVarP(&o.recursive, "recursive", "r", false, "Look for nested projects inside projects")
	flags.BoolVarP(&o.stats, "stats", "s", false, "Measure target sizes")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Show debug output")
	flags.BoolVarP(&o.nodeModulesOnly, "node-modules", "n", false, "Only clean node_modules")
	flags.BoolVarP(&o.buildOnly, "build", "b", false, "Only clean build directories")
	flags.StringVar(&o.include, "include", "", "Additional targets to clean, comma separated (e.g. .turbo,.eslintcache)")
	flags.StringVar(&o.exclude, "exclude", "", "Paths to exclude, comma separated; relative patterns use gitignore rules anchored at the scan root (a pattern without an inner slash, such as legacy, matches at any depth), absolute patterns are globs")
	flags.IntVar(&o.maxDepth, "max-depth", 0, "Maximum directory depth below the root")
	flags.IntVar(&o.threads, "threads", 0, "Number of workers (default: number of CPUs)")
	flags.StringSliceVar(&o.plugins, "plugin", nil, fmt.Sprintf("Enable a plugin (available: %s)", strings.Join(plugin.Available(), ", ")))
	flags.StringVar(&o.format, "format", string(report.FormatText), "Output format (text, json)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&o.logDir, "log-dir", "", "Directory for run logs")
}

func (o *runOptions) addCleanFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&o.force, "force", "f", false, "Clean without asking for confirmation")
	flags.BoolVarP(&o.dryRun, "dry-run", "d", false, "Show what would be cleaned without removing anything")
	flags.StringVar(&o.minSize, "min-size", "", "Skip targets smaller than this (e.g. 10MB)")
	flags.StringVar(&o.template, "template", "", "Go template (file or inline text) for the summary")
}

// buildConfig loads the config files below workDir and applies the flags that
// were set on the command line on top.
func (o *runOptions) buildConfig(cmd *cobra.Command, workDir string) (*config.Config, []string, error) {
	cfg, sources, err := config.Load(config.LoadOptions{
		HomeDir: o.homeDir,
		WorkDir: workDir,
		Path:    o.configPath,
	})
	if err != nil {
		return nil, nil, err
	}

	changed := cmd.Flags().Changed

	if changed("recursive") {
		cfg.Recursive = o.recursive
	}
	if changed("stats") {
		cfg.Stats = o.stats
	}
	if changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if changed("force") {
		cfg.Force = o.force
	}
	if changed("dry-run") {
		cfg.DryRun = o.dryRun
	}

	var only []models.TargetType
	if o.nodeModulesOnly {
		only = append(only, models.TargetNodeModules)
	}
	if o.buildOnly {
		only = append(only, models.TargetBuildDir)
	}
	if len(only) > 0 {
		cfg.Only(only...)
	}

	cfg.AddCustomTargets(config.SplitList(o.include)...)
	cfg.AddExclude(config.SplitList(o.exclude)...)
	cfg.AddPlugins(o.plugins...)

	if changed("max-depth") {
		depth := o.maxDepth
		cfg.MaxDepth = &depth
	}
	if changed("threads") {
		cfg.Threads = o.threads
	}
	if changed("min-size") {
		size, err := config.ParseSize(o.minSize)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --min-size: %w", err)
		}
		cfg.MinSize = &size
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("log-dir") {
		cfg.LogDir = o.logDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, sources, nil
}

// resolveRoot returns the absolute scan root for the optional path argument.
func resolveRoot(fs filesystem.FileSystem, args []string) (string, error) {
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}

	wd, err := fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, root), nil
}

// runEnv is the per-run logging and plugin setup.
type runEnv struct {
	runID   string
	log     logger.Logger
	file    *logger.FileLogger
	plugins *plugin.Registry
	chain   *detector.Chain
}

// newRunEnv creates the console and file loggers and enables the configured
// plugins. A log file that cannot be created only costs the file output.
func newRunEnv(cfg *config.Config, errOut io.Writer, explicitLevel bool) (*runEnv, error) {
	env := &runEnv{runID: newRunID()}

	console := logger.NewConsoleLogger(errOut, consoleLevel(cfg, explicitLevel))
	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel, env.runID)
	if err != nil {
		console.LogWarn(fmt.Sprintf("Run log disabled: %v", err))
		env.log = console
	} else {
		env.file = fileLog
		env.log = logger.Multi(console, fileLog)
	}

	env.plugins = plugin.NewRegistry()
	if err := env.plugins.Enable(env.log, cfg.Plugins...); err != nil {
		env.close()
		return nil, err
	}
	env.chain = detector.NewBuiltinChain(env.plugins.Detectors()...)
	return env, nil
}

// consoleLevel keeps the terminal quiet unless asked otherwise; the run log
// always gets the configured level.
func consoleLevel(cfg *config.Config, explicit bool) string {
	switch {
	case explicit:
		return cfg.LogLevel
	case cfg.Verbose:
		return "debug"
	default:
		return "warn"
	}
}

func (e *runEnv) logPath() string {
	if e == nil || e.file == nil {
		return ""
	}
	return e.file.Path()
}

func (e *runEnv) close() {
	if e != nil && e.file != nil {
		_ = e.file.Close()
	}
}

// reportFailure points the user to the run log after a failed command.
func (e *runEnv) reportFailure(errOut io.Writer, err error) {
	if err == nil {
		return
	}
	e.log.LogError(err.Error())
	if path := e.logPath(); path != "" {
		fmt.Fprintf(errOut, "See the run log for details: %s\n", path)
	}
}

func logSources(log logger.Logger, sources []string) {
	for _, source := range sources {
		log.LogDebug(fmt.Sprintf("Loaded config from %s", source))
	}
}

func countTargets(projects []*models.Project) int {
	n := 0
	for _, p := range projects {
		n += len(p.Targets)
	}
	return n
}
