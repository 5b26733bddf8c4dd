package persist

import (
	"slices"

	"logevents/internal/settings"
)

// Retained holds persisted entries whose keys no current registration
// resolved to. They stay out of the store and are written back on save.
type Retained map[string]settings.EventSettings

// Keys returns the retained keys in lexical order.
func (r Retained) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Pending is a resolved registration waiting for its store entry.
type Pending struct {
	Key     string
	Default settings.EventSettings
}

// Result reports what a reconcile or reload did.
type Result struct {
	// Adopted keys took their record from the file.
	Adopted []string
	// Defaulted keys were absent from the file and took the registration default.
	Defaulted []string
	// Retained entries are in the file but not registered.
	Retained Retained
	// Invalid entries failed to decode and are not registered. They are
	// written back as found.
	Invalid Raw
}

// Reconcile creates the store entries of pending, adopting the record
// persisted for each key when there is one and the registration default
// otherwise. The store-wide flag is taken from f. A nil f behaves like an
// empty file.
func Reconcile(store *settings.Store, f *File, pending []Pending) Result {
	if f == nil {
		f = NewFile()
	}
	store.SetEnabled(f.PluginEnabled)

	var res Result
	for _, p := range pending {
		rec, ok := f.Events[p.Key]
		if ok {
			res.Adopted = append(res.Adopted, p.Key)
		} else {
			rec = p.Default
			res.Defaulted = append(res.Defaulted, p.Key)
		}
		entry, _ := store.GetOrDefault(p.Key, rec)
		entry.Settings = rec
	}
	res.Retained = stale(store, f)
	res.Invalid = undecoded(store, f)
	return res
}

// Reload applies f to an already reconciled store: keys present in f take
// the persisted record, other keys keep their current one. No entries are
// created.
func Reload(store *settings.Store, f *File) Result {
	store.SetEnabled(f.PluginEnabled)

	var res Result
	for _, key := range store.Keys() {
		if rec, ok := f.Events[key]; ok {
			store.Set(key, rec)
			res.Adopted = append(res.Adopted, key)
		}
	}
	res.Retained = stale(store, f)
	res.Invalid = undecoded(store, f)
	return res
}

func undecoded(store *settings.Store, f *File) Raw {
	var r Raw
	for k, node := range f.Invalid {
		if store.Has(k) {
			continue
		}
		if r == nil {
			r = make(Raw)
		}
		r[k] = node
	}
	return r
}

func stale(store *settings.Store, f *File) Retained {
	var r Retained
	for k, rec := range f.Events {
		if store.Has(k) {
			continue
		}
		if r == nil {
			r = make(Retained)
		}
		r[k] = rec
	}
	return r
}

// Prune drops every entry of f whose key is not in keep, invalid ones
// included, and returns the dropped keys in lexical order.
func Prune(f *File, keep []string) []string {
	var removed []string
	for _, k := range f.Keys() {
		if !slices.Contains(keep, k) {
			delete(f.Events, k)
			removed = append(removed, k)
		}
	}
	for _, k := range f.Invalid.Keys() {
		if !slices.Contains(keep, k) {
			delete(f.Invalid, k)
			removed = append(removed, k)
		}
	}
	slices.Sort(removed)
	return removed
}
