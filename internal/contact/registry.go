package contact

import (
	"sync"
	"time"
)

// Registry keeps one Controller per visitor session.
type Registry struct {
	factory func() *Controller
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	c    *Controller
	seen time.Time
}

func NewRegistry(factory func() *Controller) *Registry {
	return &Registry{
		factory: factory,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the session's controller, creating it on first use.
func (r *Registry) Get(session string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[session]
	if !ok {
		e = &entry{c: r.factory()}
		r.entries[session] = e
	}
	e.seen = r.now()
	return e.c
}

// Prune drops controllers not used for idle. Controllers with a send in
// flight are kept.
func (r *Registry) Prune(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for id, e := range r.entries {
		if e.seen.After(cutoff) || e.c.Status().Busy() {
			continue
		}
		e.c.Close()
		delete(r.entries, id)
		n++
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close cancels every pending timer owned by the registry's controllers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.c.Close()
	}
}
