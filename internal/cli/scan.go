package cli

import (
	"fmt"
	"io"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/jakoblorz/npm-clean/internal/report"
	"github.com/jakoblorz/npm-clean/internal/scanner"
	"github.com/jakoblorz/npm-clean/internal/tui"
	"github.com/spf13/cobra"
)

// ScanCommand handles the scan command
type ScanCommand struct {
	fs   filesystem.FileSystem
	opts *runOptions
}

// ScanOutput is the JSON output of the scan command
type ScanOutput struct {
	RunID    string            `json:"runId"`
	Root     string            `json:"root"`
	Projects []*models.Project `json:"projects"`
}

// NewScanCommand creates a new scan command
func NewScanCommand(fs filesystem.FileSystem, opts *runOptions) *cobra.Command {
	cmd := &ScanCommand{
		fs:   fs,
		opts: opts,
	}

	return &cobra.Command{
		Use:   "scan [path]",
		Short: "List projects and their cleanup targets without removing anything",
		Long: `Scan a directory tree for projects and show the targets a clean would remove.

Nothing is removed. Use --stats to measure target sizes.`,
		Example: `  # List projects below the current directory
  npm-clean scan

  # Include nested projects and sizes, as JSON
  npm-clean scan ~/code -r -s --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}
}

// Run executes the scan command
func (c *ScanCommand) Run(cmd *cobra.Command, args []string) error {
	errOut := cmd.ErrOrStderr()

	format, err := report.ParseFormat(c.opts.format)
	if err != nil {
		return err
	}

	root, err := resolveRoot(c.fs, args)
	if err != nil {
		return err
	}

	cfg, sources, err := c.opts.buildConfig(cmd, root)
	if err != nil {
		return err
	}

	env, err := newRunEnv(cfg, errOut, cmd.Flags().Changed("log-level"))
	if err != nil {
		return err
	}
	defer env.close()
	logSources(env.log, sources)

	projects, err := scanner.New(c.fs, cfg,
		scanner.WithChain(env.chain),
		scanner.WithLogger(env.log),
	).Scan(cmd.Context(), root)
	if err != nil {
		err = fmt.Errorf("failed to scan %s: %w", root, err)
		env.reportFailure(errOut, err)
		return err
	}
	env.log.LogInfo(fmt.Sprintf("Found %d projects with %d targets", len(projects), countTargets(projects)))

	return writeScan(cmd.OutOrStdout(), format, ScanOutput{
		RunID:    env.runID,
		Root:     root,
		Projects: projects,
	}, cfg.Stats)
}

func writeScan(out io.Writer, format report.Format, scan ScanOutput, stats bool) error {
	if format == report.FormatJSON {
		if scan.Projects == nil {
			scan.Projects = []*models.Project{}
		}
		return report.WriteJSON(out, scan)
	}
	_, err := io.WriteString(out, tui.RenderScanResults(scan.Projects, stats))
	return err
}
