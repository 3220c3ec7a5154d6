package models

import "fmt"

// TargetType represents the category of a cleanup target
type TargetType string

const (
	// TargetNodeModules is the dependency cache at the project root
	TargetNodeModules TargetType = "node_modules"

	// TargetBuildDir is a build output directory
	TargetBuildDir TargetType = "build"

	// TargetCacheDir is a tool cache directory
	TargetCacheDir TargetType = "cache"

	// TargetCoverage is a coverage report directory
	TargetCoverage TargetType = "coverage"

	// TargetCustom is a user-declared target
	TargetCustom TargetType = "custom"
)

// IsValid checks if the target type is valid
func (t TargetType) IsValid() bool {
	switch t {
	case TargetNodeModules, TargetBuildDir, TargetCacheDir, TargetCoverage, TargetCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation of TargetType
func (t TargetType) String() string {
	return string(t)
}

// ParseTargetType parses a string into a TargetType
func ParseTargetType(s string) (TargetType, error) {
	tt := TargetType(s)
	if !tt.IsValid() {
		return "", fmt.Errorf("invalid target type: %s (must be node_modules, build, cache, coverage, or custom)", s)
	}
	return tt, nil
}

// CleanTarget is a directory (or file, for custom targets) proposed for removal.
type CleanTarget struct {
	Path       string     `json:"path"`
	Type       TargetType `json:"type"`
	CustomName string     `json:"customName,omitempty"`
	// Size is nil unless statistics were requested
	Size *int64 `json:"size,omitempty"`
}

// NewCleanTarget creates a target of a built-in type.
func NewCleanTarget(path string, targetType TargetType) CleanTarget {
	return CleanTarget{Path: path, Type: targetType}
}

// NewCustomTarget creates a user-declared target.
func NewCustomTarget(path, name string) CleanTarget {
	return CleanTarget{Path: path, Type: TargetCustom, CustomName: name}
}

// WithSize returns a copy of the target carrying a measured size.
func (t CleanTarget) WithSize(size int64) CleanTarget {
	t.Size = &size
	return t
}

// SizeOrZero returns the measured size, or 0 if unknown.
func (t CleanTarget) SizeOrZero() int64 {
	if t.Size == nil {
		return 0
	}
	return *t.Size
}

// Label is the human readable target type.
func (t CleanTarget) Label() string {
	if t.Type == TargetCustom {
		return fmt.Sprintf("custom: %s", t.CustomName)
	}
	return t.Type.String()
}
