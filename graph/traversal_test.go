package graph

import (
	"slices"
	"testing"
)

func sortedIDs(g *Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	slices.Sort(ids)
	return ids
}

func TestNeighborhood(t *testing.T) {
	g := path("a", "b", "c", "d", "e")

	tests := []struct {
		name  string
		seeds []string
		depth int
		want  []string
	}{
		{"depth zero", []string{"c"}, 0, []string{"c"}},
		{"one hop", []string{"a"}, 1, []string{"a", "b"}},
		{"two hops both sides", []string{"c"}, 2, []string{"a", "b", "c", "d", "e"}},
		{"multiple seeds", []string{"a", "e"}, 1, []string{"a", "b", "d", "e"}},
		{"unknown seed ignored", []string{"zz", "a"}, 1, []string{"a", "b"}},
		{"only unknown seeds", []string{"zz"}, 3, nil},
		{"negative depth", []string{"a"}, -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortedIDs(Neighborhood(g, tt.seeds, tt.depth))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Neighborhood(%v, %d) = %v, want %v", tt.seeds, tt.depth, got, tt.want)
			}
		})
	}
}

func TestNeighborhoodKeepsAttributes(t *testing.T) {
	g := BuildShared(nil)
	g.AddNode("P", KindProfessor)
	e, _ := g.AddEdge("P", "x")
	e.Weight = 3
	e.AddShared("y")

	sub := Neighborhood(g, []string{"P"}, 1)
	se, ok := sub.Edge("x", "P")
	if !ok {
		t.Fatal("missing edge in neighborhood")
	}
	if se.Weight != 3 || !se.HasShared("y") {
		t.Errorf("edge attributes lost: %+v", se)
	}
	n, _ := sub.Node("P")
	if n.Kind != KindProfessor {
		t.Errorf("kind = %s, want professor", n.Kind)
	}
}
