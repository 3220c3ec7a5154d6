package models

// TargetState is the lifecycle state of a single target during cleaning.
type TargetState string

const (
	StatePlanned   TargetState = "planned"
	StateSkipped   TargetState = "skipped"
	StateSimulated TargetState = "simulated"
	StateCleaned   TargetState = "cleaned"
	StateFailed    TargetState = "failed"
)

// TargetOutcome records what happened to one target.
type TargetOutcome struct {
	Target CleanTarget `json:"target"`
	State  TargetState `json:"state"`
	// Reason explains a skip
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
	// Error is the text of Err, kept for reports
	Error string `json:"error,omitempty"`
}

// Freed returns the bytes this outcome contributes to the reclaimed total.
func (o TargetOutcome) Freed() int64 {
	switch o.State {
	case StateCleaned, StateSimulated:
		return o.Target.SizeOrZero()
	default:
		return 0
	}
}

// ProjectOutcome collects the target outcomes of one project.
type ProjectOutcome struct {
	Project *Project        `json:"project"`
	Targets []TargetOutcome `json:"targets"`
	// Attempted is false when the project was never processed (cancelled run)
	Attempted bool `json:"attempted"`
}

// Partial reports whether at least one target of an attempted project failed.
func (o ProjectOutcome) Partial() bool {
	for _, t := range o.Targets {
		if t.State == StateFailed {
			return true
		}
	}
	return false
}

// CleanResults summarises a cleaning run.
type CleanResults struct {
	TotalProjects     int   `json:"totalProjects"`
	CleanedProjects   int   `json:"cleanedProjects"`
	FailedProjects    int   `json:"failedProjects"`
	PartialProjects   int   `json:"partialProjects"`
	TotalTargets      int   `json:"totalTargets"`
	CleanedTargets    int   `json:"cleanedTargets"`
	SkippedTargets    int   `json:"skippedTargets"`
	FailedTargets     int   `json:"failedTargets"`
	TotalBytesRemoved int64 `json:"totalBytesRemoved"`
	DryRun            bool  `json:"dryRun"`
	Aborted           bool  `json:"aborted"`
}

// NewCleanResults creates empty results for a batch of projects.
func NewCleanResults(totalProjects int, dryRun bool) *CleanResults {
	return &CleanResults{
		TotalProjects: totalProjects,
		DryRun:        dryRun,
	}
}

// Add folds one project outcome into the totals.
//
// A project that was attempted counts as cleaned even if some of its targets
// failed; those failures show up in FailedTargets and PartialProjects.
func (r *CleanResults) Add(outcome ProjectOutcome) {
	r.TotalTargets += len(outcome.Project.Targets)

	if !outcome.Attempted {
		r.FailedProjects++
		return
	}

	for _, t := range outcome.Targets {
		switch t.State {
		case StateCleaned, StateSimulated:
			r.CleanedTargets++
			r.TotalBytesRemoved += t.Freed()
		case StateFailed:
			r.FailedTargets++
		case StateSkipped:
			r.SkippedTargets++
		}
	}

	r.CleanedProjects++
	if outcome.Partial() {
		r.PartialProjects++
	}
}

// HasFailures reports whether any target or project failed.
func (r *CleanResults) HasFailures() bool {
	return r.FailedTargets > 0 || r.FailedProjects > 0
}
