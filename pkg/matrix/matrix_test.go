package matrix

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxIntersectionValue(t *testing.T) {
	assert.Equal(t, 0, New().MaxIntersectionValue())

	m := New().
		WithIntersection("A", 3).
		WithIntersection("B", 17).
		WithIntersection("A,B", 0)
	assert.Equal(t, 17, m.MaxIntersectionValue())

	zeros := New().WithIntersection("A", 0)
	assert.Equal(t, 0, zeros.MaxIntersectionValue())
}

func TestIsSetInIntersection(t *testing.T) {
	m := New()
	tests := []struct {
		set, key string
		want     bool
	}{
		{"SetA", "SetA", true},
		{"SetA", "SetA,SetB", true},
		{"SetB", "SetA,SetB", true},
		{"Set", "SetA,SetB", false},
		{"SetA", "SetAB", false},
		{"SetB", "SetA, SetB", false},
		{"", "SetA,", true},
	}
	for _, tt := range tests {
		t.Run(tt.set+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsSetInIntersection(tt.set, tt.key))
		})
	}
}

func TestWithSetIdempotent(t *testing.T) {
	m := New().WithSet("A").WithSet("B")
	again := m.WithSet("A")
	assert.Equal(t, 2, again.SetCount())
	assert.Equal(t, []string{"A", "B"}, again.Sets())
}

func TestWithIntersectionDoesNotAlias(t *testing.T) {
	base := New().WithIntersection("A", 1)
	left := base.WithIntersection("B", 2)
	right := base.WithIntersection("C", 3)

	assert.Equal(t, 1, base.IntersectionCount())
	assert.Equal(t, []string{"A"}, base.Sets())
	assert.Equal(t, []string{"A", "B"}, left.Sets())
	assert.Equal(t, []string{"A", "C"}, right.Sets())
	assert.Equal(t, "B", left.Intersection(1).Key)
	assert.Equal(t, "C", right.Intersection(1).Key)
}

func TestSetsAreUnionOfComponents(t *testing.T) {
	keys := []string{"A", "B,C", "A,C", "D,A,B", "C"}
	b := NewBuilder()
	union := map[string]bool{}
	for i, k := range keys {
		b.AddIntersection(k, i)
		for _, c := range (Intersection{Key: k}).Components() {
			union[c] = true
		}
	}
	m := b.Build()

	require.Equal(t, len(union), m.SetCount())
	for _, s := range m.Sets() {
		assert.True(t, union[s], "unexpected set %q", s)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Sets())
}

func TestBuilderBuildIsSnapshot(t *testing.T) {
	b := NewBuilder().AddIntersection("A", 1)
	m := b.Build()
	b.AddIntersection("B", 2)

	assert.Equal(t, 1, m.IntersectionCount())
	assert.False(t, m.HasSet("B"))
}

func TestIntersectionsReturnsCopy(t *testing.T) {
	m := New().WithIntersection("A", 1)
	rows := m.Intersections()
	rows[0].Value = 99
	assert.Equal(t, 1, m.Intersection(0).Value)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, New().IsEmpty())
	assert.True(t, New().WithSet("A").IsEmpty())
	assert.False(t, New().WithIntersection("A", 1).IsEmpty())
}

func TestMaxSetNameLength(t *testing.T) {
	m := New().WithIntersection("short,a-much-longer-name", 1).WithIntersection("é", 2)
	assert.Equal(t, len("a-much-longer-name"), m.MaxSetNameLength())
	assert.Equal(t, 0, New().MaxSetNameLength())
}

func TestMatrixJSONRoundTrip(t *testing.T) {
	m := New().WithIntersection("A", 1).WithIntersection("A,B", 2)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sets":["A","B"],"intersections":[{"key":"A","value":1},{"key":"A,B","value":2}]}`, string(data))

	var got Matrix
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, m.Equal(got))

	empty, err := json.Marshal(New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"sets":[],"intersections":[]}`, string(empty))
}

func TestSetsInFirstRegistrationOrder(t *testing.T) {
	m := NewBuilder().
		AddIntersection("Zeta,Alpha", 1).
		AddIntersection("Mid", 2).
		AddIntersection("Alpha,Mid,Beta", 3).
		Build()
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid", "Beta"}, m.Sets())
}
