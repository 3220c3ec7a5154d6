// Package cleaner removes the planned targets of scanned projects.
package cleaner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jakoblorz/npm-clean/internal/config"
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/jakoblorz/npm-clean/internal/parallel"
	"github.com/jakoblorz/npm-clean/internal/plugin"
	"github.com/jakoblorz/npm-clean/internal/tui"
)

const (
	// ReasonDisabled marks targets whose category is switched off.
	ReasonDisabled = "disabled by configuration"

	// ReasonBelowMinSize marks targets smaller than the configured minimum.
	ReasonBelowMinSize = "below minimum size"

	confirmMessage = "Proceed with cleaning?"
)

// Confirmer asks the user whether to go ahead.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

type noProgress struct{}

func (noProgress) Start(int)                    {}
func (noProgress) Advance(models.TargetOutcome) {}
func (noProgress) Finish()                      {}

// Cleaner executes cleanup plans.
type Cleaner struct {
	fs        filesystem.FileSystem
	cfg       *config.Config
	log       logger.Logger
	out       io.Writer
	confirmer Confirmer
	progress  tui.Progress
	plugins   *plugin.Registry
	runID     string
}

// Option configures cleaner behavior.
type Option func(*Cleaner)

// WithConfirmer sets the confirmer. Without one, every confirmation is
// declined, so only forced and dry runs remove anything.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Cleaner) {
		c.confirmer = confirmer
	}
}

func WithProgress(progress tui.Progress) Option {
	return func(c *Cleaner) {
		c.progress = progress
	}
}

// WithPlugins sets the registry whose plugins receive lifecycle hooks.
func WithPlugins(plugins *plugin.Registry) Option {
	return func(c *Cleaner) {
		c.plugins = plugins
	}
}

// WithOutput sets where the preview and status lines are written.
func WithOutput(out io.Writer) Option {
	return func(c *Cleaner) {
		c.out = out
	}
}

func WithRunID(runID string) Option {
	return func(c *Cleaner) {
		c.runID = runID
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Cleaner) {
		c.log = log
	}
}

// New creates a Cleaner. cfg must not be modified while a run is in progress.
func New(fs filesystem.FileSystem, cfg *config.Config, options ...Option) *Cleaner {
	c := &Cleaner{
		fs:  fs,
		cfg: cfg,
	}

	for _, option := range options {
		option(c)
	}

	if c.cfg == nil {
		c.cfg = config.Default()
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.progress == nil {
		c.progress = noProgress{}
	}
	return c
}

// Plan decides for every target whether it will be processed. Targets whose
// category is switched off or whose known size is below the minimum are
// skipped; everything else is planned.
func (c *Cleaner) Plan(projects []*models.Project) []models.ProjectOutcome {
	plan := make([]models.ProjectOutcome, 0, len(projects))
	for _, project := range projects {
		outcome := models.ProjectOutcome{
			Project: project,
			Targets: make([]models.TargetOutcome, 0, len(project.Targets)),
		}
		for _, target := range project.Targets {
			outcome.Targets = append(outcome.Targets, c.planTarget(target))
		}
		plan = append(plan, outcome)
	}
	return plan
}

func (c *Cleaner) planTarget(target models.CleanTarget) models.TargetOutcome {
	outcome := models.TargetOutcome{Target: target, State: models.StatePlanned}
	switch {
	case !c.cfg.Enabled(target.Type):
		outcome.State = models.StateSkipped
		outcome.Reason = ReasonDisabled
	case c.cfg.MinSize != nil && target.Size != nil && *target.Size < *c.cfg.MinSize:
		outcome.State = models.StateSkipped
		outcome.Reason = ReasonBelowMinSize
	}
	return outcome
}

// Eligible counts the planned targets of a plan.
func Eligible(plan []models.ProjectOutcome) int {
	count := 0
	for _, po := range plan {
		for _, t := range po.Targets {
			if t.State == models.StatePlanned {
				count++
			}
		}
	}
	return count
}

// Clean plans, previews, confirms and executes the cleanup of projects.
//
// Projects are processed in parallel; the targets of one project are handled
// one after another in plan order. A failing removal is recorded and the run
// continues. When ctx is cancelled no further projects are started and the
// returned error wraps the context error; the results still describe
// everything that happened.
func (c *Cleaner) Clean(ctx context.Context, projects []*models.Project) (*models.CleanResults, []models.ProjectOutcome, error) {
	plan := c.Plan(projects)
	results := models.NewCleanResults(len(projects), c.cfg.DryRun)

	c.runHook(plugin.HookBeforeCleaning, plugin.HookContext{})
	defer c.runHook(plugin.HookAfterCleaning, plugin.HookContext{Results: results})

	eligible := Eligible(plan)
	if eligible == 0 {
		for _, po := range plan {
			results.TotalTargets += len(po.Targets)
			results.SkippedTargets += len(po.Targets)
		}
		message := "Nothing to clean"
		if len(projects) == 0 {
			message = "No projects found"
		}
		fmt.Fprintln(c.out, tui.WarningStyle.Render(message))
		return results, plan, nil
	}

	fmt.Fprint(c.out, tui.RenderPreview(plan, c.cfg.DryRun))

	if !c.cfg.Force && !c.cfg.DryRun {
		confirmed, err := c.confirm(ctx)
		if err != nil {
			return results, plan, fmt.Errorf("failed to confirm cleaning: %w", err)
		}
		if !confirmed {
			c.log.LogInfo("Cleaning cancelled by user")
			results.Aborted = true
			return results, plan, nil
		}
	}

	if c.cfg.Timeout > 0 {
		c.log.LogDebug(fmt.Sprintf("Timeout %s is advisory and not enforced", c.cfg.Timeout))
	}
	c.log.LogInfo(fmt.Sprintf("Cleaning %d targets in %d projects with %d workers (dry run: %t)",
		eligible, len(plan), c.cfg.Workers(), c.cfg.DryRun))

	c.progress.Start(eligible)
	processed := parallel.Map(ctx, plan, c.cfg.Workers(),
		func(ctx context.Context, _ int, po models.ProjectOutcome) (models.ProjectOutcome, error) {
			return c.cleanProject(po), nil
		})
	c.progress.Finish()

	final := make([]models.ProjectOutcome, len(plan))
	for i, r := range processed {
		if r.Launched {
			final[i] = r.Value
		} else {
			final[i] = plan[i]
			c.log.LogWarn(fmt.Sprintf("Project not processed: %s", plan[i].Project.Path))
		}
		results.Add(final[i])
	}

	if err := ctx.Err(); err != nil {
		return results, final, fmt.Errorf("cleaning interrupted: %w", err)
	}
	return results, final, nil
}

func (c *Cleaner) confirm(ctx context.Context) (bool, error) {
	if c.confirmer == nil {
		return false, nil
	}
	return c.confirmer.Confirm(ctx, confirmMessage)
}

// cleanProject processes the planned targets of one project. It runs on a
// worker goroutine and only touches its own copy of the outcome.
func (c *Cleaner) cleanProject(po models.ProjectOutcome) models.ProjectOutcome {
	po.Targets = append([]models.TargetOutcome(nil), po.Targets...)
	po.Attempted = true

	c.runHook(plugin.HookBeforeProject, plugin.HookContext{Project: po.Project})

	for i := range po.Targets {
		outcome := &po.Targets[i]
		if outcome.State != models.StatePlanned {
			continue
		}

		c.runTargetHook(plugin.HookBeforeTarget, po.Project, *outcome)
		c.cleanTarget(po.Project, outcome)
		c.progress.Advance(*outcome)
		c.runTargetHook(plugin.HookAfterTarget, po.Project, *outcome)
	}

	c.runHook(plugin.HookAfterProject, plugin.HookContext{Project: po.Project})
	return po
}

func (c *Cleaner) cleanTarget(project *models.Project, outcome *models.TargetOutcome) {
	path := outcome.Target.Path

	if c.cfg.DryRun {
		outcome.State = models.StateSimulated
		c.log.LogDebug(fmt.Sprintf("Would remove %s [%s]", path, outcome.Target.Label()))
		return
	}

	if err := c.fs.RemoveAll(path); err != nil {
		outcome.State = models.StateFailed
		outcome.Err = fmt.Errorf("failed to remove %s: %w", path, err)
		outcome.Error = outcome.Err.Error()
		c.log.LogError(fmt.Sprintf("Failed to clean %s in project %s: %v", path, project.Path, err))
		return
	}

	outcome.State = models.StateCleaned
	c.log.LogDebug(fmt.Sprintf("Removed %s [%s]", path, outcome.Target.Label()))
}

// runTargetHook hands plugins a copy of the outcome so they cannot alter
// what gets folded into the results.
func (c *Cleaner) runTargetHook(hook plugin.HookType, project *models.Project, outcome models.TargetOutcome) {
	c.runHook(hook, plugin.HookContext{Project: project, Target: &outcome})
}

// runHook delivers hook to the plugins with copies of the project and config.
// Failures are only logged.
func (c *Cleaner) runHook(hook plugin.HookType, hc plugin.HookContext) {
	hc.RunID = c.runID
	hc.Config = c.cfg.Clone()
	if hc.Project != nil {
		hc.Project = hc.Project.Clone()
	}
	for _, err := range c.plugins.Run(hook, hc) {
		c.log.LogWarn(err.Error())
	}
}
