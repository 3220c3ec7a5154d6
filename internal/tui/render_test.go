package tui

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/stretchr/testify/require"
)

func samplePlan() []models.ProjectOutcome {
	projA := models.NewProject("/ws/proj-a")
	projA.Type = models.ProjectTypeNextJs
	projA.Targets = []models.CleanTarget{
		models.NewCleanTarget("/ws/proj-a/node_modules", models.TargetNodeModules).WithSize(150_000_000),
		models.NewCleanTarget("/ws/proj-a/.next", models.TargetBuildDir).WithSize(2_000_000),
	}

	projB := models.NewProject("/ws/proj-b")
	projB.Type = models.ProjectTypeVue
	projB.Targets = []models.CleanTarget{
		models.NewCleanTarget("/ws/proj-b/dist", models.TargetBuildDir),
		models.NewCustomTarget("/ws/proj-b/.turbo", ".turbo").WithSize(500),
	}

	empty := models.NewProject("/ws/empty")

	return []models.ProjectOutcome{
		{Project: projA, Targets: []models.TargetOutcome{
			{Target: projA.Targets[0], State: models.StatePlanned},
			{Target: projA.Targets[1], State: models.StatePlanned},
		}},
		{Project: projB, Targets: []models.TargetOutcome{
			{Target: projB.Targets[0], State: models.StatePlanned},
			{Target: projB.Targets[1], State: models.StateSkipped, Reason: "below minimum size"},
		}},
		{Project: empty},
	}
}

func TestRenderPreview(t *testing.T) {
	out := RenderPreview(samplePlan(), false)

	require.Contains(t, out, "[Cleaning] /ws/proj-a/node_modules [node_modules] (150 MB)")
	require.Contains(t, out, "[Cleaning] /ws/proj-b/dist [build] (size unknown)")
	require.Contains(t, out, "[Skipped] /ws/proj-b/.turbo [custom: .turbo] (500 B) - below minimum size")
	require.Contains(t, out, "Total estimated space to free: 152 MB")
	require.NotContains(t, out, "/ws/empty")

	snaps.MatchSnapshot(t, out)
}

func TestRenderPreview_DryRun(t *testing.T) {
	out := RenderPreview(samplePlan(), true)
	require.Contains(t, out, "[Simulating] /ws/proj-a/.next")
	require.NotContains(t, out, "[Cleaning]")
}

func TestRenderPreview_NothingFound(t *testing.T) {
	out := RenderPreview(nil, false)
	require.Contains(t, out, "No cleanable targets found!")
	require.Contains(t, out, "Total estimated space to free: 0 B")
}

func TestRenderScanResults(t *testing.T) {
	p := models.NewProject("/ws/app")
	p.Type = models.ProjectTypeReact
	p.PackageInfo = &models.PackageInfo{Name: "app", Version: "1.2.3"}
	p.Targets = []models.CleanTarget{
		models.NewCleanTarget("/ws/app/node_modules", models.TargetNodeModules).WithSize(2048),
	}
	p.SizeInfo = p.ComputeSizeInfo()

	bare := models.NewProject("/ws/bare")

	out := RenderScanResults([]*models.Project{p, bare}, true)
	require.True(t, strings.HasPrefix(out, "Found 2 projects:"))
	require.Contains(t, out, "/ws/app [react] app@1.2.3")
	require.Contains(t, out, "- /ws/app/node_modules [node_modules] (2.0 kB)")
	require.Contains(t, out, "/ws/bare [unknown]")
	require.Contains(t, out, "(no targets)")
	require.Contains(t, out, "Total reclaimable space: 2.0 kB")

	snaps.MatchSnapshot(t, out)

	require.Contains(t, RenderScanResults(nil, false), "No projects found")
	require.NotContains(t, RenderScanResults([]*models.Project{p}, false), "2.0 kB")
}

func TestRenderSummary(t *testing.T) {
	results := &models.CleanResults{
		TotalProjects:     3,
		CleanedProjects:   3,
		PartialProjects:   1,
		TotalTargets:      5,
		CleanedTargets:    3,
		SkippedTargets:    1,
		FailedTargets:     1,
		TotalBytesRemoved: 5_000_000,
	}

	out := RenderSummary(results)
	require.Contains(t, out, "Cleaning summary")
	require.Contains(t, out, "Projects: 3 cleaned, 0 failed (1 with failed targets) of 3")
	require.Contains(t, out, "Targets:  3 cleaned, 1 skipped, 1 failed of 5")
	require.Contains(t, out, "Space freed: 5.0 MB")
	require.Contains(t, out, "Some targets could not be cleaned")

	snaps.MatchSnapshot(t, out)
}

func TestRenderSummary_DryRunAndAborted(t *testing.T) {
	dry := models.NewCleanResults(1, true)
	dry.TotalBytesRemoved = 1000
	out := RenderSummary(dry)
	require.Contains(t, out, "Dry run summary")
	require.Contains(t, out, "Space that would be freed: 1.0 kB")
	require.NotContains(t, out, "Cleaning completed")

	aborted := models.NewCleanResults(1, false)
	aborted.Aborted = true
	out = RenderSummary(aborted)
	require.Contains(t, out, "Cleaning cancelled by user")
	require.NotContains(t, out, "Space")
}
