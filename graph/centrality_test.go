package graph

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func star(leaves ...string) *Graph {
	g := New()
	g.AddNode("hub", KindProfessor)
	for _, l := range leaves {
		g.AddEdge("hub", l)
	}
	return g
}

func path(ids ...string) *Graph {
	g := New()
	for _, id := range ids {
		g.AddNode(id, KindCoauthor)
	}
	for i := 1; i < len(ids); i++ {
		g.AddEdge(ids[i-1], ids[i])
	}
	return g
}

func TestComputeEmptyGraph(t *testing.T) {
	rep := Compute(New(), DefaultCentralityOptions())
	if len(rep.Scores) != 0 || len(rep.Nodes) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
	if !rep.EigenvectorConverged {
		t.Error("empty graph should report convergence")
	}
}

func TestComputeSingleNode(t *testing.T) {
	g := New()
	g.AddNode("solo", KindProfessor)
	rep := Compute(g, DefaultCentralityOptions())
	s := rep.Scores["solo"]
	if s.Degree != 0 || s.Closeness != 0 || s.Betweenness != 0 {
		t.Errorf("single node scores = %+v, want zero degree/closeness/betweenness", s)
	}
}

func TestDegreeCentrality(t *testing.T) {
	g := star("a", "b", "c")
	deg := DegreeCentrality(g)
	if !approx(deg["hub"], 1, eps) {
		t.Errorf("hub degree = %v, want 1", deg["hub"])
	}
	for _, l := range []string{"a", "b", "c"} {
		if !approx(deg[l], 1.0/3, eps) {
			t.Errorf("%s degree = %v, want 1/3", l, deg[l])
		}
	}
}

func TestDegreeCentralityIsolatedNodes(t *testing.T) {
	g := New()
	g.AddNode("x", KindCoauthor)
	g.AddNode("y", KindCoauthor)
	for id, v := range DegreeCentrality(g) {
		if v != 0 {
			t.Errorf("%s degree = %v, want 0", id, v)
		}
	}
}

func TestClosenessCentralityStar(t *testing.T) {
	cl := ClosenessCentrality(star("a", "b", "c"))
	if !approx(cl["hub"], 1, eps) {
		t.Errorf("hub closeness = %v, want 1", cl["hub"])
	}
	// Leaf distances: 1 to the hub, 2 to each other leaf.
	if !approx(cl["a"], 3.0/5, eps) {
		t.Errorf("leaf closeness = %v, want 0.6", cl["a"])
	}
}

func TestClosenessCentralityDisconnected(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("c", "d")
	cl := ClosenessCentrality(g)
	for id, v := range cl {
		if !approx(v, 1.0/3, eps) {
			t.Errorf("%s closeness = %v, want 1/3", id, v)
		}
	}
}

func TestBetweennessCentralityStar(t *testing.T) {
	bc := BetweennessCentrality(star("a", "b", "c", "d"))
	if !approx(bc["hub"], 1, eps) {
		t.Errorf("hub betweenness = %v, want 1", bc["hub"])
	}
	for _, l := range []string{"a", "b", "c", "d"} {
		if bc[l] != 0 {
			t.Errorf("%s betweenness = %v, want 0", l, bc[l])
		}
	}
}

func TestBetweennessCentralityPath(t *testing.T) {
	bc := BetweennessCentrality(path("a", "b", "c", "d"))
	// b lies on a-c and a-d: 2 of the 3 pairs it is not part of.
	if !approx(bc["b"], 2.0/3, eps) {
		t.Errorf("b betweenness = %v, want 2/3", bc["b"])
	}
	if !approx(bc["c"], 2.0/3, eps) {
		t.Errorf("c betweenness = %v, want 2/3", bc["c"])
	}
	if bc["a"] != 0 || bc["d"] != 0 {
		t.Errorf("endpoint betweenness = %v/%v, want 0", bc["a"], bc["d"])
	}
}

func TestBetweennessCentralityTwoNodes(t *testing.T) {
	bc := BetweennessCentrality(path("a", "b"))
	if bc["a"] != 0 || bc["b"] != 0 {
		t.Errorf("two-node betweenness = %v, want zeros", bc)
	}
}

func TestEigenvectorCentralityTwoNodes(t *testing.T) {
	ev, err := EigenvectorCentrality(path("a", "b"), DefaultMaxIter, DefaultTolerance)
	if err != nil {
		t.Fatalf("EigenvectorCentrality: %v", err)
	}
	want := 1 / math.Sqrt2
	if !approx(ev["a"], want, 1e-6) || !approx(ev["b"], want, 1e-6) {
		t.Errorf("eigenvector = %v, want both %v", ev, want)
	}
}

func TestEigenvectorCentralityStar(t *testing.T) {
	ev, err := EigenvectorCentrality(star("a", "b", "c", "d"), DefaultMaxIter, DefaultTolerance)
	if err != nil {
		t.Fatalf("EigenvectorCentrality: %v", err)
	}
	if ev["hub"] <= ev["a"] {
		t.Errorf("hub %v should outrank leaf %v", ev["hub"], ev["a"])
	}
	norm := 0.0
	for _, v := range ev {
		norm += v * v
	}
	if !approx(norm, 1, 1e-6) {
		t.Errorf("squared norm = %v, want 1", norm)
	}
}

func TestEigenvectorCentralityNotConverged(t *testing.T) {
	_, err := EigenvectorCentrality(path("a", "b", "c"), 1, DefaultTolerance)
	if !errors.Is(err, ErrNotConverged) {
		t.Fatalf("err = %v, want ErrNotConverged", err)
	}
}

func TestComputeZeroFillsOnNonConvergence(t *testing.T) {
	g := path("a", "b", "c")
	rep := Compute(g, CentralityOptions{MaxIter: 1, Tolerance: DefaultTolerance})

	if rep.EigenvectorConverged {
		t.Fatal("expected non-convergence")
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", rep.Warnings)
	}
	for id, s := range rep.Scores {
		if s.Eigenvector != 0 {
			t.Errorf("%s eigenvector = %v, want 0", id, s.Eigenvector)
		}
	}
	// The other measures are unaffected.
	if !approx(rep.Scores["b"].Betweenness, 1, eps) {
		t.Errorf("b betweenness = %v, want 1", rep.Scores["b"].Betweenness)
	}
	if !approx(rep.Scores["b"].Degree, 1, eps) {
		t.Errorf("b degree = %v, want 1", rep.Scores["b"].Degree)
	}
}

func TestComputeScoresInUnitRange(t *testing.T) {
	g := BuildShared(nil)
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}, {"e", "f"}} {
		g.AddEdge(e[0], e[1])
	}
	rep := Compute(g, DefaultCentralityOptions())
	if len(rep.Nodes) != g.NodeCount() {
		t.Fatalf("report covers %d nodes, want %d", len(rep.Nodes), g.NodeCount())
	}
	for id, s := range rep.Scores {
		for name, v := range map[string]float64{
			"degree": s.Degree, "closeness": s.Closeness,
			"betweenness": s.Betweenness, "eigenvector": s.Eigenvector,
		} {
			if v < 0 || v > 1+eps {
				t.Errorf("%s %s = %v out of [0,1]", id, name, v)
			}
		}
	}
}
