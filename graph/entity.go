package graph

// Kind classifies a node in a collaboration graph.
type Kind string

// Node kinds used by the builders and renderers.
const (
	KindProfessor      Kind = "professor"
	KindCoauthor       Kind = "coauthor"
	KindSharedCoauthor Kind = "shared_coauthor"
)

// rank orders kinds for upgrades. A node is only ever reclassified to a
// kind of higher rank, so professors are never downgraded.
func (k Kind) rank() int {
	switch k {
	case KindProfessor:
		return 2
	case KindSharedCoauthor:
		return 1
	default:
		return 0
	}
}

// Node is a person in the graph, keyed by display name.
type Node struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Label  string `json:"label"`
	Title  string `json:"title,omitempty"`
	Cohort string `json:"cohort,omitempty"`

	// SharedBy lists, sorted, the professors whose coauthor sets contain
	// this node's name. Set only when there are at least two of them.
	SharedBy []string `json:"shared_by,omitempty"`
}

// Edge is an undirected relationship between two nodes. From and To are
// stored in canonical (lexicographic) order.
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Weight float64  `json:"weight"`
	Shared []string `json:"shared,omitempty"` // sorted shared coauthor names
	Direct bool     `json:"direct,omitempty"` // professors list each other as coauthors

	shared map[string]bool
}

// HasShared reports whether name is recorded as a shared coauthor on e.
func (e *Edge) HasShared(name string) bool {
	return e.shared[name]
}

// Other returns the endpoint of e that is not id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}
