// Package plugin lets compiled-in extensions contribute project detectors
// and observe the cleaning lifecycle.
package plugin

import (
	"github.com/jakoblorz/npm-clean/internal/config"
	"github.com/jakoblorz/npm-clean/internal/detector"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// HookType identifies a point in the cleaning lifecycle.
type HookType string

const (
	// HookBeforeCleaning fires once per batch, before the preview and confirmation
	HookBeforeCleaning HookType = "before_cleaning"

	// HookAfterCleaning fires once with the final results, also for declined or empty batches
	HookAfterCleaning HookType = "after_cleaning"

	// HookBeforeProject fires on the worker goroutine before a project's targets are processed
	HookBeforeProject HookType = "before_project"

	// HookAfterProject fires on the worker goroutine after a project's targets are processed
	HookAfterProject HookType = "after_project"

	// HookBeforeTarget fires before a single target is removed or simulated
	HookBeforeTarget HookType = "before_target"

	// HookAfterTarget fires after a single target was removed, simulated or failed
	HookAfterTarget HookType = "after_target"
)

// String returns the string representation of HookType
func (h HookType) String() string {
	return string(h)
}

// HookContext carries the data relevant to a hook. Only the fields that make
// sense for the hook type are set.
type HookContext struct {
	RunID   string
	Config  *config.Config
	Project *models.Project
	Target  *models.TargetOutcome
	Results *models.CleanResults
}

// Plugin is a compiled-in extension.
//
// OnHook may be called from several goroutines at once and must be safe for
// concurrent use.
type Plugin interface {
	Name() string
	Version() string
	Description() string
	Initialize() error
	Detectors() []detector.Detector
	OnHook(hook HookType, hc HookContext) error
}
