package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// FormatBytes renders a byte count for humans.
func FormatBytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

func formatSize(size *int64) string {
	if size == nil {
		return "size unknown"
	}
	return FormatBytes(*size)
}

// actionLabel renders the preview action of a planned target.
func actionLabel(state models.TargetState, dryRun bool) string {
	switch {
	case state == models.StateSkipped:
		return SkippedStyle.Render("[Skipped]")
	case dryRun:
		return SimulatingStyle.Render("[Simulating]")
	default:
		return CleaningStyle.Render("[Cleaning]")
	}
}

// RenderPreview renders the cleanup plan: one block per project with the
// action, path, type and size of every target, and the estimated total.
func RenderPreview(plan []models.ProjectOutcome, dryRun bool) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Projects to clean:"))
	b.WriteString("\n")

	var total int64
	found := false
	for _, po := range plan {
		if len(po.Targets) == 0 {
			continue
		}
		found = true

		fmt.Fprintf(&b, "\n• Project: %s %s\n",
			ProjectStyle.Render(po.Project.Path),
			TagStyle.Render("["+po.Project.Type.String()+"]"))

		for _, outcome := range po.Targets {
			if outcome.State != models.StateSkipped {
				total += outcome.Target.SizeOrZero()
			}
			line := fmt.Sprintf("  - %s %s %s %s",
				actionLabel(outcome.State, dryRun),
				outcome.Target.Path,
				TagStyle.Render("["+outcome.Target.Label()+"]"),
				SizeStyle.Render("("+formatSize(outcome.Target.Size)+")"))
			if outcome.Reason != "" {
				line += SubtleStyle.Render(" - " + outcome.Reason)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if !found {
		b.WriteString(WarningStyle.Render("No cleanable targets found!"))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nTotal estimated space to free: %s\n", SuccessStyle.Render(FormatBytes(total)))
	return b.String()
}

// RenderScanResults lists discovered projects and their planned targets.
func RenderScanResults(projects []*models.Project, stats bool) string {
	var b strings.Builder

	if len(projects) == 0 {
		b.WriteString(WarningStyle.Render("No projects found"))
		b.WriteString("\n")
		return b.String()
	}

	noun := "projects"
	if len(projects) == 1 {
		noun = "project"
	}
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Found %d %s:", len(projects), noun)))
	b.WriteString("\n")

	var total int64
	for _, p := range projects {
		name := ""
		if p.PackageInfo != nil {
			name = " " + SubtleStyle.Render(p.PackageInfo.Name+"@"+p.PackageInfo.Version)
		}
		fmt.Fprintf(&b, "\n• %s %s%s\n",
			ProjectStyle.Render(p.Path),
			TagStyle.Render("["+p.Type.String()+"]"),
			name)

		if len(p.Targets) == 0 {
			b.WriteString(SubtleStyle.Render("  (no targets)"))
			b.WriteString("\n")
			continue
		}
		for _, t := range p.Targets {
			line := fmt.Sprintf("  - %s %s", t.Path, TagStyle.Render("["+t.Label()+"]"))
			if stats {
				line += " " + SizeStyle.Render("("+formatSize(t.Size)+")")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if p.SizeInfo != nil {
			total += p.SizeInfo.Total
		}
	}

	if stats {
		fmt.Fprintf(&b, "\nTotal reclaimable space: %s\n", SuccessStyle.Render(FormatBytes(total)))
	}
	return b.String()
}

// RenderSummary renders the outcome of a cleaning run.
func RenderSummary(results *models.CleanResults) string {
	var b strings.Builder

	if results.Aborted {
		b.WriteString(WarningStyle.Render("Cleaning cancelled by user"))
		b.WriteString("\n")
		return b.String()
	}

	title := "Cleaning summary"
	freedLabel := "Space freed"
	if results.DryRun {
		title = "Dry run summary"
		freedLabel = "Space that would be freed"
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	projects := fmt.Sprintf("%d cleaned, %d failed", results.CleanedProjects, results.FailedProjects)
	if results.PartialProjects > 0 {
		projects += fmt.Sprintf(" (%d with failed targets)", results.PartialProjects)
	}
	fmt.Fprintf(&b, "  Projects: %s of %d\n", projects, results.TotalProjects)
	fmt.Fprintf(&b, "  Targets:  %d cleaned, %d skipped, %d failed of %d\n",
		results.CleanedTargets, results.SkippedTargets, results.FailedTargets, results.TotalTargets)
	fmt.Fprintf(&b, "  %s: %s\n", freedLabel, SuccessStyle.Render(FormatBytes(results.TotalBytesRemoved)))

	if results.HasFailures() {
		b.WriteString(ErrorStyle.Render("Some targets could not be cleaned"))
		b.WriteString("\n")
	} else if !results.DryRun {
		b.WriteString(SuccessStyle.Render("Cleaning completed"))
		b.WriteString("\n")
	}
	return b.String()
}
