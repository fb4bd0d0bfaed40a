package constructs

import "sync"

// Retainer keeps objects alive for as long as the Retainer itself is
// reachable. It pairs with the weakly held policy of a StateMachine and the
// weakly held members of Subscribers:
//
//	retainer := &Retainer{}
//	m.SetPolicy(RetainedBy(&Funcs[string, string]{...}, retainer))
type Retainer struct {
	mu      sync.Mutex
	objects []any
}

// Retain keeps v alive until Release or until the Retainer is collected.
func (r *Retainer) Retain(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = append(r.objects, v)
}

// Len returns the number of retained objects.
func (r *Retainer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// Release drops every retained object.
func (r *Retainer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = nil
}

// RetainedBy retains v in r and returns it, for inline use.
func RetainedBy[T any](v T, r *Retainer) T {
	r.Retain(v)
	return v
}
