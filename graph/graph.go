package graph

import (
	"encoding/json"
	"slices"
)

// Graph is an undirected, simple graph of people. Nodes are unique by ID,
// there are no self-loops and no parallel edges: adding an existing edge
// returns the edge already present so callers can merge attributes into it.
// Iteration order is insertion order, which keeps rendering and reports
// deterministic for a given input.
type Graph struct {
	nodes     []*Node
	index     map[string]int
	edges     []*Edge
	edgeIndex map[edgeKey]int
	adj       [][]int // node index -> neighbour node indices
}

type edgeKey struct{ a, b string }

func keyOf(a, b string) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index:     make(map[string]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// AddNode inserts a node or returns the existing one. An existing node is
// reclassified only when kind outranks its current kind.
func (g *Graph) AddNode(id string, kind Kind) *Node {
	if i, ok := g.index[id]; ok {
		n := g.nodes[i]
		if kind.rank() > n.Kind.rank() {
			n.Kind = kind
		}
		return n
	}
	n := &Node{ID: id, Kind: kind, Label: id}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return n
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// AddEdge connects a and b, creating missing endpoints as coauthors. The
// boolean is true when the edge is new. Self-loops are ignored and yield a
// nil edge.
func (g *Graph) AddEdge(a, b string) (*Edge, bool) {
	if a == b {
		return nil, false
	}
	k := keyOf(a, b)
	if i, ok := g.edgeIndex[k]; ok {
		return g.edges[i], false
	}
	g.AddNode(a, KindCoauthor)
	g.AddNode(b, KindCoauthor)

	e := &Edge{From: k.a, To: k.b, Weight: 1}
	g.edgeIndex[k] = len(g.edges)
	g.edges = append(g.edges, e)

	ia, ib := g.index[a], g.index[b]
	g.adj[ia] = append(g.adj[ia], ib)
	g.adj[ib] = append(g.adj[ib], ia)
	return e, true
}

// Edge returns the edge between a and b, in either order.
func (g *Graph) Edge(a, b string) (*Edge, bool) {
	i, ok := g.edgeIndex[keyOf(a, b)]
	if !ok {
		return nil, false
	}
	return g.edges[i], true
}

// AddShared records name as a shared coauthor on e. It reports whether
// the name was new for the edge.
func (e *Edge) AddShared(name string) bool {
	if e.shared == nil {
		e.shared = make(map[string]bool)
	}
	if e.shared[name] {
		return false
	}
	e.shared[name] = true
	i, _ := slices.BinarySearch(e.Shared, name)
	e.Shared = slices.Insert(e.Shared, i, name)
	return true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return slices.Clone(g.edges)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the IDs adjacent to id in edge insertion order.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for j, n := range g.adj[i] {
		out[j] = g.nodes[n].ID
	}
	return out
}

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.adj[i])
}

// NodesOfKind returns the IDs of all nodes with the given kind.
func (g *Graph) NodesOfKind(kind Kind) []string {
	var out []string
	for _, n := range g.nodes {
		if n.Kind == kind {
			out = append(out, n.ID)
		}
	}
	return out
}

// Subgraph returns a copy of g restricted to the given node IDs. Unknown
// IDs are ignored; node and edge attributes are copied.
func (g *Graph) Subgraph(ids []string) *Graph {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	sub := New()
	for _, n := range g.nodes {
		if !keep[n.ID] {
			continue
		}
		cp := sub.AddNode(n.ID, n.Kind)
		*cp = *n
		cp.SharedBy = slices.Clone(n.SharedBy)
	}
	for _, e := range g.edges {
		if !keep[e.From] || !keep[e.To] {
			continue
		}
		ne, _ := sub.AddEdge(e.From, e.To)
		ne.Weight = e.Weight
		ne.Direct = e.Direct
		for _, s := range e.Shared {
			ne.AddShared(s)
		}
	}
	return sub
}

// MarshalJSON encodes the graph as {"nodes": [...], "edges": [...]}.
func (g *Graph) MarshalJSON() ([]byte, error) {
	nodes := g.nodes
	if nodes == nil {
		nodes = []*Node{}
	}
	edges := g.edges
	if edges == nil {
		edges = []*Edge{}
	}
	return json.Marshal(struct {
		Nodes []*Node `json:"nodes"`
		Edges []*Edge `json:"edges"`
	}{nodes, edges})
}
