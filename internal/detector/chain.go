package detector

import (
	"errors"
	"sort"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
)

// Chain is a priority-ordered list of detectors. It is immutable after
// construction and safe for concurrent use.
type Chain struct {
	detectors []Detector
	byName    map[string]Detector
}

// NewChain orders detectors by ascending priority. Detectors with equal
// priority keep their registration order. A later detector with an already
// registered name is ignored.
func NewChain(detectors ...Detector) *Chain {
	c := &Chain{byName: make(map[string]Detector, len(detectors))}
	for _, d := range detectors {
		if d == nil {
			continue
		}
		if _, exists := c.byName[d.Name()]; exists {
			continue
		}
		c.byName[d.Name()] = d
		c.detectors = append(c.detectors, d)
	}

	sort.SliceStable(c.detectors, func(i, j int) bool {
		return c.detectors[i].Priority() < c.detectors[j].Priority()
	})
	return c
}

// Builtin returns the built-in detectors in registration order.
func Builtin() []Detector {
	return []Detector{
		NewNextJs(),
		NewNuxtJs(),
		NewAngular(),
		NewVue(),
		NewReact(),
		NewNodeJs(),
	}
}

// NewBuiltinChain builds a chain from the built-in detectors followed by extra.
func NewBuiltinChain(extra ...Detector) *Chain {
	return NewChain(append(Builtin(), extra...)...)
}

// Detectors returns the detectors in evaluation order.
func (c *Chain) Detectors() []Detector {
	return append([]Detector(nil), c.detectors...)
}

// Lookup returns the detector registered under name.
func (c *Chain) Lookup(name string) (Detector, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Fallback returns the lowest ranked detector. Its directory lists are used
// for projects no detector claimed.
func (c *Chain) Fallback() Detector {
	if len(c.detectors) == 0 {
		return nil
	}
	return c.detectors[len(c.detectors)-1]
}

// Classify runs the detectors in order and returns the first that matches,
// recording its name on the project. A detector error does not stop the
// chain; the errors are returned joined alongside the eventual match, or a
// nil detector when nothing matched.
func (c *Chain) Classify(fsys filesystem.FileSystem, p *models.Project) (Detector, error) {
	var errs []error
	for _, d := range c.detectors {
		matched, err := d.Detect(fsys, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if matched {
			p.DetectedBy = d.Name()
			return d, errors.Join(errs...)
		}
	}

	p.Type = models.ProjectTypeUnknown
	p.DetectedBy = ""
	return nil, errors.Join(errs...)
}

// For resolves the detector that classified p, falling back to the lowest
// ranked detector for unclassified projects.
func (c *Chain) For(p *models.Project) Detector {
	if p.DetectedBy != "" {
		if d, ok := c.Lookup(p.DetectedBy); ok {
			return d
		}
	}
	return c.Fallback()
}
