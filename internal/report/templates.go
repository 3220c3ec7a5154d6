package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jakoblorz/npm-clean/internal/tui"
)

// DefaultTemplate is a one-line summary, useful as a starting point for
// custom templates.
const DefaultTemplate = `{{ if .DryRun }}[dry run] {{ end }}{{ .Results.CleanedTargets }} targets in {{ .Results.CleanedProjects }} projects, {{ bytes .Results.TotalBytesRemoved }}{{ if .Results.FailedTargets }}, {{ .Results.FailedTargets }} failed{{ end }}
`

func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["bytes"] = tui.FormatBytes
	return funcs
}

// ParseTemplate parses a report template. source is read as a file when
// such a file exists and used as template text otherwise.
func ParseTemplate(source string) (*template.Template, error) {
	name := "report"
	text := source
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", source, err)
		}
		name = filepath.Base(source)
		text = string(data)
	}

	tmpl, err := template.New(name).Funcs(funcMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

// ExecuteTemplate renders data with tmpl.
func ExecuteTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
