package infogroup

import (
	"sync"
	"weak"
)

// DefaultRegistry records every group created without WithRegistry.
var DefaultRegistry = NewRegistry()

// Registry keeps track of constructed groups for introspection.
// Entries are weak: a group that is no longer referenced elsewhere drops out
// once collected. Registry is safe for concurrent use.
type Registry struct {
	entries []weak.Pointer[Group]

	mu sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register records g. Registering the same group twice is a no-op.
func (r *Registry) Register(g *Group) {
	if g == nil {
		return
	}
	p := weak.Make(g)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e == p {
			return
		}
	}
	r.entries = append(r.entries, p)
}

// Instances returns the live groups in registration order.
func (r *Registry) Instances() []*Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked()
}

// Find returns the live groups with the given name.
func (r *Registry) Find(name string) []*Group {
	var res []*Group
	for _, g := range r.Instances() {
		if g.Name == name {
			res = append(res, g)
		}
	}
	return res
}

// Len returns the number of live groups.
func (r *Registry) Len() int {
	return len(r.Instances())
}

// Reset forgets all groups.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// pruneLocked drops collected entries and returns the live groups.
func (r *Registry) pruneLocked() []*Group {
	live := make([]*Group, 0, len(r.entries))
	kept := r.entries[:0]
	for _, e := range r.entries {
		if g := e.Value(); g != nil {
			live = append(live, g)
			kept = append(kept, e)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	return live
}
