// Package status holds named counters and labels a session publishes while it runs.
package status

import (
	"maps"
	"slices"
	"sync"
)

// Registry maps names to counters and labels
// Lookup creates on first use and locks; callers keep the returned pointer for updates
type Registry struct {
	mu       sync.Mutex
	counters map[string]*Counter
	labels   map[string]*Label
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
		labels:   make(map[string]*Label),
	}
}

// Counter returns the counter called name
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[name]
	if !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

// Label returns the label called name
func (r *Registry) Label(name string) *Label {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.labels[name]
	if !ok {
		l = &Label{}
		r.labels[name] = l
	}
	return l
}

// Snapshot returns name/value pairs for slog: counters by name, then labels by name
func (r *Registry) Snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, 0, 2*(len(r.counters)+len(r.labels)))
	for _, name := range slices.Sorted(maps.Keys(r.counters)) {
		out = append(out, name, r.counters[name].Value())
	}
	for _, name := range slices.Sorted(maps.Keys(r.labels)) {
		out = append(out, name, r.labels[name].Value())
	}
	return out
}
