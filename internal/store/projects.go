package store

import (
	"strings"

	"github.com/xolan/timetracker/internal/entry"
)

// ProjectDelimiter joins project names when the registry is persisted
const ProjectDelimiter = ";;"

// Projects is the ordered set of known project names. entry.NoProject is
// always present and first. Names compare exactly, case included.
type Projects struct {
	names []string
}

// NewProjects returns a registry seeded with names, in order, duplicates
// and blanks dropped.
func NewProjects(names ...string) *Projects {
	p := &Projects{names: []string{entry.NoProject}}
	for _, n := range names {
		p.Add(n)
	}
	return p
}

// DecodeProjects parses a persisted registry.
func DecodeProjects(s string) *Projects {
	if s == "" {
		return NewProjects()
	}
	return NewProjects(strings.Split(s, ProjectDelimiter)...)
}

// Encode joins the registry for persistence.
func (p *Projects) Encode() string {
	return strings.Join(p.names, ProjectDelimiter)
}

// Registrable reports whether name can be stored in the registry. Blank
// names and names containing ProjectDelimiter cannot.
func Registrable(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.Contains(name, ProjectDelimiter)
}

// Add appends name if it is new and registrable. It reports whether the
// registry changed.
func (p *Projects) Add(name string) bool {
	if !Registrable(name) || p.Has(name) {
		return false
	}
	p.names = append(p.names, name)
	return true
}

// Remove deletes name. entry.NoProject cannot be removed.
func (p *Projects) Remove(name string) bool {
	if name == entry.NoProject {
		return false
	}
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether name is registered.
func (p *Projects) Has(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns the registered names in order.
func (p *Projects) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of registered names, NoProject included.
func (p *Projects) Len() int {
	return len(p.names)
}
