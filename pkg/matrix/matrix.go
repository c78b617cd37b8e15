package matrix

import (
	"encoding/json"
	"slices"
	"strings"
)

// componentSep separates set names inside a combination key.
const componentSep = ","

// Intersection is one row of the plot: a combination key and its count.
type Intersection struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// Components returns the set names encoded in the key.
func (i Intersection) Components() []string {
	return strings.Split(i.Key, componentSep)
}

// Matrix is the immutable set/intersection model. The zero value is an
// empty model.
type Matrix struct {
	sets  []string
	index map[string]struct{}
	rows  []Intersection
}

// New returns an empty Matrix.
func New() Matrix { return Matrix{} }

// WithSet returns a model with name registered. Registering a known name
// returns m unchanged.
func (m Matrix) WithSet(name string) Matrix {
	if m.HasSet(name) {
		return m
	}
	return m.builder().AddSet(name).Build()
}

// WithIntersection returns a model with the row appended and its
// components registered as sets.
func (m Matrix) WithIntersection(key string, value int) Matrix {
	return m.builder().AddIntersection(key, value).Build()
}

func (m Matrix) builder() *Builder {
	b := NewBuilder()
	for _, s := range m.sets {
		b.AddSet(s)
	}
	b.rows = slices.Clone(m.rows)
	return b
}

// HasSet reports whether name is a registered set.
func (m Matrix) HasSet(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Sets returns the set names in first-registration order.
func (m Matrix) Sets() []string { return slices.Clone(m.sets) }

// Intersections returns the rows in insertion order.
func (m Matrix) Intersections() []Intersection { return slices.Clone(m.rows) }

// Intersection returns row i.
func (m Matrix) Intersection(i int) Intersection { return m.rows[i] }

// SetCount returns the number of distinct sets.
func (m Matrix) SetCount() int { return len(m.sets) }

// IntersectionCount returns the number of rows.
func (m Matrix) IntersectionCount() int { return len(m.rows) }

// IsEmpty reports whether the model has nothing to draw.
func (m Matrix) IsEmpty() bool { return len(m.sets) == 0 || len(m.rows) == 0 }

// MaxIntersectionValue returns the largest row value, or 0 for an empty model.
func (m Matrix) MaxIntersectionValue() int {
	maxVal := 0
	for i, r := range m.rows {
		if i == 0 || r.Value > maxVal {
			maxVal = r.Value
		}
	}
	return maxVal
}

// MaxSetNameLength returns the length in characters of the longest set name.
func (m Matrix) MaxSetNameLength() int {
	n := 0
	for _, s := range m.sets {
		n = max(n, len([]rune(s)))
	}
	return n
}

// IsSetInIntersection reports whether setName is exactly one of the
// comma-separated components of key.
func (m Matrix) IsSetInIntersection(setName, key string) bool {
	return slices.Contains(strings.Split(key, componentSep), setName)
}

// Equal reports whether both models hold the same sets and rows in the
// same order.
func (m Matrix) Equal(o Matrix) bool {
	return slices.Equal(m.sets, o.sets) && slices.Equal(m.rows, o.rows)
}

type matrixJSON struct {
	Sets          []string       `json:"sets"`
	Intersections []Intersection `json:"intersections"`
}

// MarshalJSON encodes the model as {"sets": [...], "intersections": [...]}.
func (m Matrix) MarshalJSON() ([]byte, error) {
	out := matrixJSON{Sets: m.Sets(), Intersections: m.Intersections()}
	if out.Sets == nil {
		out.Sets = []string{}
	}
	if out.Intersections == nil {
		out.Intersections = []Intersection{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the model, re-deriving sets from the rows so the
// union invariant holds for any input.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var in matrixJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b := NewBuilder()
	for _, s := range in.Sets {
		b.AddSet(s)
	}
	for _, r := range in.Intersections {
		b.AddIntersection(r.Key, r.Value)
	}
	*m = b.Build()
	return nil
}

// Builder accumulates sets and rows. It is not safe for concurrent use.
type Builder struct {
	sets  []string
	index map[string]struct{}
	rows  []Intersection
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]struct{})}
}

// AddSet registers name; known names are ignored.
func (b *Builder) AddSet(name string) *Builder {
	if _, ok := b.index[name]; ok {
		return b
	}
	b.index[name] = struct{}{}
	b.sets = append(b.sets, name)
	return b
}

// AddIntersection appends a row and registers its components.
func (b *Builder) AddIntersection(key string, value int) *Builder {
	b.rows = append(b.rows, Intersection{Key: key, Value: value})
	for _, c := range strings.Split(key, componentSep) {
		b.AddSet(c)
	}
	return b
}

// Build freezes the accumulated state. The Builder may keep being used;
// later additions do not affect returned models.
func (b *Builder) Build() Matrix {
	index := make(map[string]struct{}, len(b.sets))
	for _, s := range b.sets {
		index[s] = struct{}{}
	}
	return Matrix{
		sets:  slices.Clone(b.sets),
		index: index,
		rows:  slices.Clone(b.rows),
	}
}
