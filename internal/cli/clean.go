package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jakoblorz/npm-clean/internal/cleaner"
	"github.com/jakoblorz/npm-clean/internal/config"
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/report"
	"github.com/jakoblorz/npm-clean/internal/scanner"
	"github.com/jakoblorz/npm-clean/internal/tui"
	"github.com/spf13/cobra"
)

// ErrTargetsFailed is returned when at least one target could not be removed.
var ErrTargetsFailed = errors.New("some targets could not be cleaned")

// CleanCommand handles the default clean command
type CleanCommand struct {
	fs   filesystem.FileSystem
	opts *runOptions

	// confirmer overrides the interactive prompt
	confirmer cleaner.Confirmer
	// progress overrides the terminal progress display
	progress tui.Progress
}

// Run scans the root, previews the cleanup, asks for confirmation and removes
// the planned targets.
func (c *CleanCommand) Run(cmd *cobra.Command, args []string) error {
	started := time.Now()
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

	err = c.clean(cmd, env, cfg, root, format, started)
	env.reportFailure(errOut, err)
	return err
}

func (c *CleanCommand) clean(cmd *cobra.Command, env *runEnv, cfg *config.Config, root string, format report.Format, started time.Time) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// JSON output must stay parseable, so the preview goes to stderr.
	previewOut := out
	if format == report.FormatJSON || c.opts.template != "" {
		previewOut = cmd.ErrOrStderr()
	}

	var disk *report.DiskFree
	if !cfg.DryRun {
		disk = report.MeasureBefore(root)
	}

	projects, err := scanner.New(c.fs, cfg,
		scanner.WithChain(env.chain),
		scanner.WithLogger(env.log),
	).Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}
	env.log.LogInfo(fmt.Sprintf("Found %d projects with %d targets", len(projects), countTargets(projects)))

	confirmer := c.confirmer
	if confirmer == nil {
		confirmer = tui.NewPromptConfirmer(cmd.InOrStdin(), previewOut)
	}
	progress := c.progress
	if progress == nil {
		progress = tui.NewProgress(previewOut, cfg.DryRun, env.log)
	}

	results, outcomes, err := cleaner.New(c.fs, cfg,
		cleaner.WithConfirmer(confirmer),
		cleaner.WithProgress(progress),
		cleaner.WithPlugins(env.plugins),
		cleaner.WithOutput(previewOut),
		cleaner.WithRunID(env.runID),
		cleaner.WithLogger(env.log),
	).Clean(ctx, projects)
	if len(projects) == 0 {
		return err
	}
	if err != nil && ctx.Err() == nil {
		if errors.Is(err, tui.ErrNoTerminal) {
			return fmt.Errorf("confirmation needed but no input is available, use --force or --dry-run: %w", err)
		}
		return err
	}

	disk.MeasureAfter()
	rep := &report.Report{
		RunID:      env.runID,
		Root:       root,
		DryRun:     cfg.DryRun,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Projects:   outcomes,
		Results:    results,
		DiskFree:   disk,
		LogFile:    env.logPath(),
	}
	if writeErr := c.writeReport(out, rep, format); writeErr != nil {
		return writeErr
	}

	if err != nil {
		return err
	}
	if results.HasFailures() {
		return fmt.Errorf("%w: %d failed", ErrTargetsFailed, results.FailedTargets)
	}
	return nil
}

func (c *CleanCommand) writeReport(out io.Writer, rep *report.Report, format report.Format) error {
	if c.opts.template == "" {
		return rep.Write(out, format)
	}

	tmpl, err := report.ParseTemplate(c.opts.template)
	if err != nil {
		return err
	}
	text, err := report.ExecuteTemplate(tmpl, rep)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}
