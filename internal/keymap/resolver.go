package keymap

import (
	"slices"
	"sort"
)

// Resolver maps key strings to actions.
type Resolver struct {
	actions   map[string]Action
	keys      map[Action][]string
	conflicts []string
}

// NewResolver indexes bindings. A key bound to two actions keeps the
// first one and is reported by Conflicts.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		actions: make(map[string]Action),
		keys:    make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			prev, bound := r.actions[key]
			switch {
			case !bound:
				r.actions[key] = b.Action
			case prev != b.Action:
				if !slices.Contains(r.conflicts, key) {
					r.conflicts = append(r.conflicts, key)
				}
				continue
			}
			if !slices.Contains(r.keys[b.Action], key) {
				r.keys[b.Action] = append(r.keys[b.Action], key)
			}
		}
	}
	sort.Strings(r.conflicts)
	return r
}

// Resolve returns the action bound to key, or "" when there is none.
func (r *Resolver) Resolve(key string) Action {
	return r.actions[key]
}

// KeysFor returns the keys of action in binding order.
func (r *Resolver) KeysFor(action Action) []string {
	return r.keys[action]
}

// Key returns the first key of action for hints, or "" when unbound.
func (r *Resolver) Key(action Action) string {
	if keys := r.keys[action]; len(keys) > 0 {
		return Label(keys[0])
	}
	return ""
}

// Conflicts returns the keys bound to more than one action, sorted.
func (r *Resolver) Conflicts() []string {
	return r.conflicts
}

// Label returns key the way help text shows it.
func Label(key string) string {
	if key == " " {
		return "space"
	}
	return key
}
