package answer

import "sort"

// Registry is the injected known-college mapping (slug -> display name).
// The web layer lists it; the answer path gates on it before touching any
// external service.
type Registry struct {
	names map[string]string
}

// College is one registry entry.
type College struct {
	Slug string
	Name string
}

// NewRegistry copies the configured slug -> display name mapping.
func NewRegistry(names map[string]string) *Registry {
	m := make(map[string]string, len(names))
	for slug, name := range names {
		m[slug] = name
	}
	return &Registry{names: m}
}

// Lookup returns the display name for a slug.
func (r *Registry) Lookup(slug string) (string, bool) {
	name, ok := r.names[slug]
	return name, ok
}

// All returns every college sorted by display name.
func (r *Registry) All() []College {
	out := make([]College, 0, len(r.names))
	for slug, name := range r.names {
		out = append(out, College{Slug: slug, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
