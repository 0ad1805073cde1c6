package api

import (
	"maps"
	"slices"
)

// DependencyKind classifies something outside the workflow that its
// extension data may refer to.
type DependencyKind string

const (
	DependencyConfig  DependencyKind = "config"
	DependencyContent DependencyKind = "content"
	DependencyModule  DependencyKind = "module"
	DependencyTheme   DependencyKind = "theme"
)

// Dependencies maps each kind to a set of opaque names, e.g.
// {config: ["node.type.article"]}.
type Dependencies map[DependencyKind][]string

// Add records names under kind, ignoring ones already present.
func (d Dependencies) Add(kind DependencyKind, names ...string) {
	for _, n := range names {
		if !slices.Contains(d[kind], n) {
			d[kind] = append(d[kind], n)
		}
	}
}

// Has reports whether name is recorded under kind.
func (d Dependencies) Has(kind DependencyKind, name string) bool {
	return slices.Contains(d[kind], name)
}

// IsEmpty reports whether no names are recorded.
func (d Dependencies) IsEmpty() bool {
	for _, names := range d {
		if len(names) > 0 {
			return false
		}
	}
	return true
}

// Intersect returns the dependencies present in both d and other.
func (d Dependencies) Intersect(other Dependencies) Dependencies {
	out := Dependencies{}
	for kind, names := range d {
		for _, n := range names {
			if other.Has(kind, n) {
				out.Add(kind, n)
			}
		}
	}
	return out
}

// Kinds returns the recorded kinds in sorted order.
func (d Dependencies) Kinds() []DependencyKind {
	return slices.Sorted(maps.Keys(d))
}
