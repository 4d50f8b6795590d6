// Package tags classifies relocations and diagnostics for display: a
// Finding carries a relocation's kind and destination tags plus any
// diagnostic tags, and the inspector TUI labels its detail pane with
// Tag values.
package tags

import "time"

// Tag is a short classification label. Tags are stored without a '#'
// prefix; the prefix is added on rendering.
type Tag string

// Standard tags. The Kind/destination tags mirror xref.RelocationKind
// and xref.DestinationKind; the diagnostic tags mirror the Warn
// categories the Cross-Module Resolver reports.
const (
	Call         Tag = "call"
	Load         Tag = "load"
	Current      Tag = "current"
	Main         Tag = "main"
	Autoload     Tag = "autoload"
	Overlay      Tag = "overlay"
	Any          Tag = "any"
	None         Tag = "none"
	Dangling     Tag = "dangling"
	MidFunction  Tag = "mid-function"
	ExternalLbl  Tag = "external-label"
	NoCandidates Tag = "no-candidates"
)

// Tags is a collection of tags with helper methods.
type Tags []Tag

// Has returns true if the tag collection contains the given tag.
func (t Tags) Has(tag Tag) bool {
	for _, x := range t {
		if x == tag {
			return true
		}
	}
	return false
}

// Add adds a tag if not already present.
func (t *Tags) Add(tag Tag) {
	if !t.Has(tag) {
		*t = append(*t, tag)
	}
}

// Strings returns tags as strings with a '#' prefix for display.
func (t Tags) Strings() []string {
	out := make([]string, len(t))
	for i, tag := range t {
		out[i] = "#" + string(tag)
	}
	return out
}

// Raw returns tags as strings without the '#' prefix.
func (t Tags) Raw() []string {
	out := make([]string, len(t))
	for i, tag := range t {
		out[i] = string(tag)
	}
	return out
}

// Primary returns the first tag, or empty string if none.
func (t Tags) Primary() Tag {
	if len(t) > 0 {
		return t[0]
	}
	return ""
}

// Annotations holds key-value metadata attached to a Finding.
type Annotations map[string]string

// Set adds or updates an annotation.
func (a Annotations) Set(k, v string) {
	a[k] = v
}

// Get retrieves an annotation value.
func (a Annotations) Get(k string) string {
	return a[k]
}

// Has returns true if the annotation exists.
func (a Annotations) Has(k string) bool {
	_, ok := a[k]
	return ok
}

// Finding is one displayable row: a relocation or a diagnostic, tagged
// for filtering and colorizing in the inspector.
type Finding struct {
	SiteAddress uint32      // relocation site, or the address a diagnostic refers to
	Tags        Tags        // the kind tag plus the destination tag, in that order
	Name        string      // symbol name, when known
	Detail      string      // free-form extra context (e.g. a warning message)
	Annotations Annotations // key-value metadata
	Timestamp   time.Time   // when the finding was recorded
}

// NewFinding creates a Finding tagged with kind and destination.
func NewFinding(site uint32, kind, destination Tag, name, detail string) *Finding {
	return &Finding{
		SiteAddress: site,
		Tags:        Tags{kind, destination},
		Name:        name,
		Detail:      detail,
		Annotations: make(Annotations),
		Timestamp:   time.Now(),
	}
}

// AddTag adds a tag to the finding.
func (f *Finding) AddTag(tag Tag) {
	f.Tags.Add(tag)
}

// Annotate sets an annotation on the finding.
func (f *Finding) Annotate(k, v string) {
	if f.Annotations == nil {
		f.Annotations = make(Annotations)
	}
	f.Annotations.Set(k, v)
}

// PrimaryTag returns the primary (first) tag with a '#' prefix.
func (f *Finding) PrimaryTag() string {
	if len(f.Tags) > 0 {
		return "#" + string(f.Tags[0])
	}
	return ""
}

// IsDiagnostic reports whether f represents a resolver warning rather
// than a successfully resolved relocation.
func (f *Finding) IsDiagnostic() bool {
	for _, t := range f.Tags {
		switch t {
		case Dangling, MidFunction, NoCandidates:
			return true
		}
	}
	return false
}
