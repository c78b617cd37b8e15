package upset

import (
	"slices"

	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

// Paint is a fill change of one element.
type Paint struct {
	ID   string `json:"id"`
	Fill string `json:"fill"`
}

// Recolor repaints the cells, dots and bars of s for state st. Geometry is
// left untouched. It returns the new scene and the fills that changed, in
// drawing order. Recolor is the fast path for hover changes and paints with
// the palette s was drawn with.
func Recolor(s Scene, st interact.State) (Scene, []Paint) {
	palette := s.Colors()
	out := s
	out.Selected = st.Selected()
	out.Hovered, _ = st.Hovered()
	out.Elements = slices.Clone(s.Elements)
	var paints []Paint
	for i := range out.Elements {
		e := &out.Elements[i]
		kind, ok := paintKind(e.Role)
		if !ok {
			continue
		}
		fill := palette.Fill(kind, styles.CellState{
			Selected: st.IsSelected(e.Key),
			Hovered:  st.IsHovered(e.Key),
			Included: e.Included,
		})
		if fill != e.Fill {
			e.Fill = fill
			paints = append(paints, Paint{ID: e.ID, Fill: fill})
		}
	}
	return out, paints
}

func paintKind(r Role) (styles.Kind, bool) {
	switch r {
	case RoleCell:
		return styles.KindCell, true
	case RoleDot:
		return styles.KindDot, true
	case RoleBar:
		return styles.KindBar, true
	}
	return 0, false
}
