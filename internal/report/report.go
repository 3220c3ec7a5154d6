// Package report writes the outcome of a run as text, JSON or a user
// template.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/jakoblorz/npm-clean/internal/tui"
)

// Format selects the report output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be text or json)", s)
	}
}

// DiskFree is the free space of the filesystem holding the scan root.
type DiskFree struct {
	Path   string `json:"path"`
	Before uint64 `json:"before"`
	After  uint64 `json:"after"`
}

// Reclaimed returns how much free space grew during the run.
func (d *DiskFree) Reclaimed() int64 {
	return int64(d.After) - int64(d.Before)
}

// Report describes one cleaning run.
type Report struct {
	RunID      string                  `json:"runId"`
	Root       string                  `json:"root"`
	DryRun     bool                    `json:"dryRun"`
	StartedAt  time.Time               `json:"startedAt"`
	FinishedAt time.Time               `json:"finishedAt"`
	Projects   []models.ProjectOutcome `json:"projects"`
	Results    *models.CleanResults    `json:"results"`
	DiskFree   *DiskFree               `json:"diskFree,omitempty"`
	LogFile    string                  `json:"logFile,omitempty"`
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures returns the outcomes of all failed targets.
func (r *Report) Failures() []models.TargetOutcome {
	var failed []models.TargetOutcome
	for _, po := range r.Projects {
		for _, t := range po.Targets {
			if t.State == models.StateFailed {
				failed = append(failed, t)
			}
		}
	}
	return failed
}

// Write renders the report in format to w.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r)
	default:
		_, err := io.WriteString(w, r.Text())
		return err
	}
}

// Text renders the human readable summary.
func (r *Report) Text() string {
	if r.Results == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(tui.RenderSummary(r.Results))
	if r.Results.Aborted {
		return b.String()
	}

	for _, failed := range r.Failures() {
		fmt.Fprintf(&b, "  %s %s: %s\n", tui.ErrorStyle.Render("✗"), failed.Target.Path, failed.Error)
	}
	if r.DiskFree != nil {
		fmt.Fprintf(&b, "  Free disk space: %s → %s\n",
			tui.FormatBytes(int64(r.DiskFree.Before)), tui.FormatBytes(int64(r.DiskFree.After)))
	}
	if d := r.Duration(); d > 0 {
		fmt.Fprintf(&b, "  Duration: %s\n", d.Round(time.Millisecond))
	}
	return b.String()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
