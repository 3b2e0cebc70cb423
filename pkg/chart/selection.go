package chart

import (
	"slices"
	"sort"
)

// Selection is an immutable snapshot of the user's control state: the
// active series keys plus mode, filter, focus and breakdown toggle.
// Every modifier returns a new Selection.
type Selection struct {
	mode      string
	filter    string
	focus     string
	breakdown bool
	active    map[string]struct{}
}

// NewSelection returns a selection in mode with keys active. No keys means
// "all keys" once resolved against a dataset.
func NewSelection(mode string, keys ...string) Selection {
	s := Selection{mode: mode}
	return s.With(keys...)
}

func (s Selection) Mode() string    { return s.mode }
func (s Selection) Filter() string  { return s.filter }
func (s Selection) Focus() string   { return s.focus }
func (s Selection) Breakdown() bool { return s.breakdown }

// WithMode switches mode. The active set and the focus are reset since keys
// and focus targets belong to the previous mode's dataset.
func (s Selection) WithMode(mode string) Selection {
	if mode == s.mode {
		return s
	}
	out := s
	out.mode = mode
	out.active = nil
	out.focus = ""
	return out
}

// WithFilter sets the filter and clears the focus.
func (s Selection) WithFilter(filter string) Selection {
	out := s
	out.filter = filter
	if filter != s.filter {
		out.focus = ""
	}
	return out
}

// WithFocus sets the drill-down target. An empty focus clears it.
func (s Selection) WithFocus(focus string) Selection {
	out := s
	out.focus = focus
	return out
}

// WithBreakdown sets the binary breakdown toggle.
func (s Selection) WithBreakdown(on bool) Selection {
	out := s
	out.breakdown = on
	return out
}

func (s Selection) clone() map[string]struct{} {
	m := make(map[string]struct{}, len(s.active))
	for k := range s.active {
		m[k] = struct{}{}
	}
	return m
}

// With returns s with keys added.
func (s Selection) With(keys ...string) Selection {
	if len(keys) == 0 {
		return s
	}
	out := s
	out.active = s.clone()
	for _, k := range keys {
		out.active[k] = struct{}{}
	}
	return out
}

// Without returns s with keys removed.
func (s Selection) Without(keys ...string) Selection {
	out := s
	out.active = s.clone()
	for _, k := range keys {
		delete(out.active, k)
	}
	return out
}

// Flip toggles membership of key.
func (s Selection) Flip(key string) Selection {
	if s.IsActive(key) {
		return s.Without(key)
	}
	return s.With(key)
}

// Only replaces the active set with keys.
func (s Selection) Only(keys ...string) Selection {
	out := s
	out.active = nil
	return out.With(keys...)
}

// Cleared empties the active set.
func (s Selection) Cleared() Selection {
	out := s
	out.active = nil
	return out
}

// IsActive reports explicit membership of key.
func (s Selection) IsActive(key string) bool {
	_, ok := s.active[key]
	return ok
}

// Len returns the number of explicitly active keys.
func (s Selection) Len() int { return len(s.active) }

// Active returns the explicitly active keys, sorted.
func (s Selection) Active() []string {
	keys := make([]string, 0, len(s.active))
	for k := range s.active {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve returns the keys of known that are active, in known's order.
// When none of known is active (including an empty selection) it returns
// all of known.
func (s Selection) Resolve(known []string) []string {
	var out []string
	for _, k := range known {
		if s.IsActive(k) {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return slices.Clone(known)
	}
	return out
}

// GroupState reports whether every child is active. It is derived from the
// active set on each call and is false for an empty group.
func (s Selection) GroupState(children []string) bool {
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if !s.IsActive(c) {
			return false
		}
	}
	return true
}

// SetGroup sets every child to on.
func (s Selection) SetGroup(children []string, on bool) Selection {
	if on {
		return s.With(children...)
	}
	return s.Without(children...)
}

// FlipGroup sets every child to the negation of the group's current state.
func (s Selection) FlipGroup(children []string) Selection {
	return s.SetGroup(children, !s.GroupState(children))
}

// Equal reports whether two selections hold the same state.
func (s Selection) Equal(o Selection) bool {
	if s.mode != o.mode || s.filter != o.filter || s.focus != o.focus || s.breakdown != o.breakdown {
		return false
	}
	if len(s.active) != len(o.active) {
		return false
	}
	for k := range s.active {
		if !o.IsActive(k) {
			return false
		}
	}
	return true
}
