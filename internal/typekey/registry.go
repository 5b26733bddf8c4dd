package typekey

import "fmt"

// Registry assigns keys to identities.
//
// Identities are added during setup and resolved in one pass, so collisions
// are judged against the whole registered set. A resolved key never changes:
// identities added after a Resolve are resolved against the frozen keys.
type Registry struct {
	order []Identity
	seen  map[Identity]struct{}
	keys  map[Identity]string
	taken map[string]Identity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		seen:  make(map[Identity]struct{}),
		keys:  make(map[Identity]string),
		taken: make(map[string]Identity),
	}
}

// Add records id. It returns false when id was already present.
func (r *Registry) Add(id Identity) bool {
	if _, ok := r.seen[id]; ok {
		return false
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	return true
}

// Len returns the number of identities added.
func (r *Registry) Len() int {
	return len(r.order)
}

// Resolve assigns a key to every identity that has none yet.
//
// Identities are grouped by short form. A group of one keeps the short form.
// In a larger group every member takes its qualified form, as does an
// identity whose short form matches an identity resolved earlier. Qualified
// forms that still clash (types declared inside different functions of one
// package) get "#2", "#3", ... in registration order.
func (r *Registry) Resolve() []Identity {
	var pending []Identity
	groups := make(map[string]int)
	for _, id := range r.order {
		if _, ok := r.keys[id]; ok {
			continue
		}
		pending = append(pending, id)
		groups[id.Short()]++
	}
	if len(pending) == 0 {
		return nil
	}

	resolvedShort := make(map[string]bool, len(r.keys))
	for id := range r.keys {
		resolvedShort[id.Short()] = true
	}

	for _, id := range pending {
		short := id.Short()
		key := short
		if groups[short] > 1 || resolvedShort[short] {
			key = id.Qualified()
		}
		key = r.unique(key)
		r.keys[id] = key
		r.taken[key] = id
	}
	return pending
}

func (r *Registry) unique(key string) string {
	if _, clash := r.taken[key]; !clash {
		return key
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s#%d", key, n)
		if _, clash := r.taken[candidate]; !clash {
			return candidate
		}
	}
}

// Key returns the resolved key of id.
func (r *Registry) Key(id Identity) (string, bool) {
	k, ok := r.keys[id]
	return k, ok
}

// Lookup returns the identity a key was resolved for.
func (r *Registry) Lookup(key string) (Identity, bool) {
	id, ok := r.taken[key]
	return id, ok
}

// Keys returns the resolved keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.keys))
	for _, id := range r.order {
		if k, ok := r.keys[id]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}
