package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitiveEquivalents_SymmetricAndTransitive(t *testing.T) {
	g := NewGraph([]Equivalency{
		{CourseID: "A", EquivalentID: "B"},
		{CourseID: "B", EquivalentID: "C"},
	})

	fromA := g.TransitiveEquivalents("A")
	assert.True(t, fromA.Has("B"))
	assert.True(t, fromA.Has("C"))

	fromC := g.TransitiveEquivalents("C")
	assert.True(t, fromC.Has("A"))
	assert.True(t, fromC.Has("B"))
	assert.Len(t, fromC, 3)
}

func TestTransitiveEquivalents_Singleton(t *testing.T) {
	g := NewGraph(nil)
	got := g.TransitiveEquivalents("X")
	assert.Equal(t, []CourseID{"X"}, got.Sorted())

	var nilGraph *Graph
	assert.Equal(t, []CourseID{"X"}, nilGraph.TransitiveEquivalents("X").Sorted())
}

func TestTransitiveEquivalents_Cycle(t *testing.T) {
	g := NewGraph([]Equivalency{
		{CourseID: "A", EquivalentID: "B"},
		{CourseID: "B", EquivalentID: "C"},
		{CourseID: "C", EquivalentID: "A"},
		{CourseID: "A", EquivalentID: "A"},
		{CourseID: "B", EquivalentID: "A"},
	})

	assert.Equal(t, []CourseID{"A", "B", "C"}, g.TransitiveEquivalents("B").Sorted())
	assert.Len(t, g.Neighbors("A"), 2)
}

func TestGraph_DisconnectedComponents(t *testing.T) {
	g := NewGraph([]Equivalency{
		{CourseID: "A", EquivalentID: "B"},
		{CourseID: "X", EquivalentID: "Y"},
	})

	assert.True(t, g.Equivalent("B", "A"))
	assert.False(t, g.Equivalent("A", "X"))
	assert.True(t, g.Equivalent("Q", "Q"))
}

func TestGraph_EquivalentCodes(t *testing.T) {
	courses := map[CourseID]*Course{
		"1": {ID: "1", Subject: "MATH", Number: "101"},
		"2": {ID: "2", Subject: "MAT", Number: "1100"},
		"3": {ID: "3", Subject: "MATH", Number: "101", Institution: "other"},
	}
	lookup := func(id CourseID) (*Course, bool) {
		c, ok := courses[id]
		return c, ok
	}
	g := NewGraph([]Equivalency{
		{CourseID: "1", EquivalentID: "2"},
		{CourseID: "2", EquivalentID: "3"},
		{CourseID: "3", EquivalentID: "missing"},
	})

	assert.Equal(t, []string{"MAT 1100", "MATH 101"}, g.EquivalentCodes("1", lookup))
}

func TestEquivalency_Other(t *testing.T) {
	e := Equivalency{CourseID: "A", EquivalentID: "B"}

	other, ok := e.Other("B")
	assert.True(t, ok)
	assert.Equal(t, CourseID("A"), other)

	_, ok = e.Other("C")
	assert.False(t, ok)
}
