// Package manifest reads package.json metadata.
package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
)

const (
	defaultName    = "unknown"
	defaultVersion = "0.0.0"
)

// packageJSON represents a minimal subset of package.json.
// Dependency values are decoded loosely so that a malformed entry does not
// invalidate the whole manifest.
type packageJSON struct {
	Name            string                 `json:"name"`
	Version         string                 `json:"version"`
	Dependencies    map[string]interface{} `json:"dependencies"`
	DevDependencies map[string]interface{} `json:"devDependencies"`
}

// Path returns the manifest path for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, models.ManifestFile)
}

// Exists reports whether dir holds a manifest file.
func Exists(fsys filesystem.FileSystem, dir string) bool {
	return filesystem.IsFile(fsys, Path(dir))
}

// Read parses the manifest in projectDir.
func Read(fsys filesystem.FileSystem, projectDir string) (*models.PackageInfo, error) {
	path := Path(projectDir)
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return info, nil
}

// Parse decodes manifest bytes into PackageInfo, applying defaults for a
// missing name or version. Non-string dependency values are ignored.
func Parse(data []byte) (*models.PackageInfo, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	info := &models.PackageInfo{
		Name:            pkg.Name,
		Version:         pkg.Version,
		Dependencies:    stringValues(pkg.Dependencies),
		DevDependencies: stringValues(pkg.DevDependencies),
	}
	if strings.TrimSpace(info.Name) == "" {
		info.Name = defaultName
	}
	if strings.TrimSpace(info.Version) == "" {
		info.Version = defaultVersion
	}
	return info, nil
}

func stringValues(values map[string]interface{}) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if s, ok := value.(string); ok {
			result[key] = s
		}
	}
	return result
}
