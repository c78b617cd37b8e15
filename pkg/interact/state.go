// Package interact holds the hover/selection state of one upset chart.
//
// [State] is a value with two independent parts: the hover state machine
// (Idle, or Hovered on exactly one intersection key) and the set of
// selected keys. Transitions are pure methods returning the next State and
// the [Update] the caller must perform:
//
//   - hover changes are frequent and only need a recolor of existing
//     elements ([UpdateRecolor]);
//   - selection changes touch many cells at once and trigger a full
//     layout and draw ([UpdateFull]);
//   - pointer movement only repositions the tooltip ([UpdateTooltip]).
//
// [Controller] owns the single mutable State of a chart and the optional
// external click handler.
package interact

import "slices"

// Update tells the caller how much of the chart must be redrawn.
type Update int

const (
	// UpdateNone means nothing changed.
	UpdateNone Update = iota
	// UpdateTooltip means only the tooltip position changed.
	UpdateTooltip
	// UpdateRecolor means fills must be recomputed; geometry is unchanged.
	UpdateRecolor
	// UpdateFull means layout and drawing must be redone.
	UpdateFull
)

// String returns the update name.
func (u Update) String() string {
	switch u {
	case UpdateNone:
		return "none"
	case UpdateTooltip:
		return "tooltip"
	case UpdateRecolor:
		return "recolor"
	case UpdateFull:
		return "full"
	}
	return "unknown"
}

// Max returns the larger of two updates.
func (u Update) Max(o Update) Update { return max(u, o) }

// State is the interaction state of one chart. The zero value is Idle with
// nothing selected.
type State struct {
	hovered  string
	hovering bool
	selected []string
}

// Hovered returns the hovered key, if any.
func (s State) Hovered() (string, bool) { return s.hovered, s.hovering }

// IsHovered reports whether key is the hovered intersection.
func (s State) IsHovered(key string) bool { return s.hovering && s.hovered == key }

// IsSelected reports whether key is selected.
func (s State) IsSelected(key string) bool { return slices.Contains(s.selected, key) }

// Selected returns the selected keys in selection order.
func (s State) Selected() []string { return slices.Clone(s.selected) }

// Enter hovers key. Entering the already hovered key is a no-op.
func (s State) Enter(key string) (State, Update) {
	if s.IsHovered(key) {
		return s, UpdateNone
	}
	s.hovered, s.hovering = key, true
	return s, UpdateRecolor
}

// Leave returns to Idle.
func (s State) Leave() (State, Update) {
	if !s.hovering {
		return s, UpdateNone
	}
	s.hovered, s.hovering = "", false
	return s, UpdateRecolor
}

// Toggle removes key from the selection if present, otherwise appends it.
func (s State) Toggle(key string) (State, Update) {
	if i := slices.Index(s.selected, key); i >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), i, i+1)
	} else {
		s.selected = append(slices.Clone(s.selected), key)
	}
	return s, UpdateFull
}

// WithSelected returns s with the selection replaced by keys, deduplicated.
func (s State) WithSelected(keys ...string) State {
	sel := make([]string, 0, len(keys))
	for _, k := range keys {
		if !slices.Contains(sel, k) {
			sel = append(sel, k)
		}
	}
	s.selected = sel
	return s
}

// Equal reports whether both states hover the same key and select the same
// keys, ignoring selection order.
func (s State) Equal(o State) bool {
	if s.hovering != o.hovering || s.hovered != o.hovered || len(s.selected) != len(o.selected) {
		return false
	}
	for _, k := range s.selected {
		if !o.IsSelected(k) {
			return false
		}
	}
	return true
}
