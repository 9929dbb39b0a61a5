package graph

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/brunobiangulo/coauthornet/profile"
)

// professor is a deduplicated input profile with its coauthor set.
type professor struct {
	name      string
	record    profile.Record
	coauthors map[string]bool
	order     []string // coauthor names in first-seen order
}

// collectProfessors folds records into one entry per professor name,
// keeping input order. Records without a name are skipped; records that
// repeat a name are merged by coauthor union.
func collectProfessors(records []profile.Record) []*professor {
	byName := make(map[string]*professor, len(records))
	var out []*professor
	for i := range records {
		r := &records[i]
		if r.Name == "" {
			slog.Warn("graph: skipping profile without a name", "scholar_id", r.ScholarID)
			continue
		}
		p, ok := byName[r.Name]
		if !ok {
			p = &professor{name: r.Name, record: *r, coauthors: make(map[string]bool)}
			byName[r.Name] = p
			out = append(out, p)
		} else {
			slog.Warn("graph: merging profiles with the same name",
				"name", r.Name, "scholar_id", r.ScholarID)
		}
		for _, c := range r.DistinctCoauthors() {
			if !p.coauthors[c] {
				p.coauthors[c] = true
				p.order = append(p.order, c)
			}
		}
	}
	return out
}

func addProfessor(g *Graph, r *profile.Record) *Node {
	n := g.AddNode(r.Name, KindProfessor)
	n.Cohort = r.Cohort
	if r.Affiliation != "" {
		n.Title = r.Name + "\n" + r.Affiliation
	} else {
		n.Title = r.Name
	}
	return n
}

func addCoauthor(g *Graph, name string) *Node {
	n := g.AddNode(name, KindCoauthor)
	if n.Title == "" {
		n.Title = name
	}
	return n
}

func markShared(n *Node, professors ...string) {
	for _, p := range professors {
		if i, found := slices.BinarySearch(n.SharedBy, p); !found {
			n.SharedBy = slices.Insert(n.SharedBy, i, p)
		}
	}
	if n.Kind == KindSharedCoauthor {
		n.Title = n.ID + "\nShared by: " + strings.Join(n.SharedBy, ", ")
	}
}

// BuildIndividual returns the star network of a single professor: one
// professor node, one coauthor node per distinct coauthor name and an edge
// from the professor to each. A nil or unnamed record yields an empty graph.
func BuildIndividual(r *profile.Record) *Graph {
	g := New()
	if r == nil || r.Name == "" {
		return g
	}
	addProfessor(g, r)
	for _, c := range r.DistinctCoauthors() {
		addCoauthor(g, c)
		g.AddEdge(r.Name, c)
	}
	return g
}

// BuildShared returns the network of collaborators shared between
// professors. For every unordered pair of professors with a non-empty
// coauthor intersection it adds a professor–professor edge weighted by the
// intersection size, and links each shared name to both professors.
// Weights and membership depend only on set contents, so any permutation
// of records yields an isomorphic graph.
func BuildShared(records []profile.Record) *Graph {
	g := New()
	profs := collectProfessors(records)
	for _, p := range profs {
		addProfessor(g, &p.record)
	}

	for i := 0; i < len(profs); i++ {
		for j := i + 1; j < len(profs); j++ {
			a, b := profs[i], profs[j]
			shared := intersect(a.coauthors, b.coauthors)
			if len(shared) == 0 {
				continue
			}

			e, _ := g.AddEdge(a.name, b.name)
			e.Weight = float64(len(shared))
			e.Direct = a.coauthors[b.name] || b.coauthors[a.name]
			for _, s := range shared {
				e.AddShared(s)
			}

			for _, s := range shared {
				n := g.AddNode(s, KindSharedCoauthor)
				markShared(n, a.name, b.name)
				for _, p := range []string{a.name, b.name} {
					pe, _ := g.AddEdge(p, s)
					if n.Kind == KindProfessor {
						pe.Direct = true
					}
				}
			}
		}
	}
	return g
}

// BuildCombined merges every professor's individual network into one graph,
// deduplicating coauthors by name, then reclassifies each coauthor listed
// by two or more professors as a shared coauthor and connects those
// professors directly. It keeps the unshared coauthors BuildShared leaves
// out; SharedView of the result is isomorphic to BuildShared on the same
// records.
func BuildCombined(records []profile.Record) *Graph {
	g := New()
	profs := collectProfessors(records)
	isProf := make(map[string]bool, len(profs))
	for _, p := range profs {
		addProfessor(g, &p.record)
		isProf[p.name] = true
	}

	// listedBy[name] is the set of professors whose coauthor set holds name.
	// For coauthor nodes this equals their professor neighbours.
	listedBy := make(map[string][]string)
	for _, p := range profs {
		for _, c := range p.order {
			if !isProf[c] {
				addCoauthor(g, c)
			}
			e, _ := g.AddEdge(p.name, c)
			if isProf[c] {
				e.Direct = true
			}
			listedBy[c] = append(listedBy[c], p.name)
		}
	}

	for _, n := range g.Nodes() {
		owners := listedBy[n.ID]
		if len(owners) < 2 {
			continue
		}
		if n.Kind != KindProfessor {
			n.Kind = KindSharedCoauthor
		}
		markShared(n, owners...)

		for i := 0; i < len(owners); i++ {
			for j := i + 1; j < len(owners); j++ {
				e, _ := g.AddEdge(owners[i], owners[j])
				e.AddShared(n.ID)
				e.Weight = float64(len(e.Shared))
			}
		}
	}
	return g
}

// SharedView extracts from a combined network the part BuildShared
// produces: professors, shared coauthors, edges between professors and
// shared coauthors, and professor–professor edges that carry shared
// coauthors or join a professor to a colleague listed by two or more
// professors.
func SharedView(g *Graph) *Graph {
	var keep []string
	for _, n := range g.nodes {
		if n.Kind == KindProfessor || n.Kind == KindSharedCoauthor {
			keep = append(keep, n.ID)
		}
	}
	sub := g.Subgraph(keep)

	view := New()
	for _, n := range sub.nodes {
		cp := view.AddNode(n.ID, n.Kind)
		*cp = *n
	}
	for _, e := range sub.edges {
		from, _ := sub.Node(e.From)
		to, _ := sub.Node(e.To)
		if from.Kind == KindProfessor && to.Kind == KindProfessor &&
			len(e.Shared) == 0 && !sharedThrough(from, to) && !sharedThrough(to, from) {
			continue
		}
		ne, _ := view.AddEdge(e.From, e.To)
		ne.Weight = e.Weight
		ne.Direct = e.Direct
		for _, s := range e.Shared {
			ne.AddShared(s)
		}
	}
	return view
}

// sharedThrough reports whether professor b is a shared collaborator that
// professor a lists.
func sharedThrough(a, b *Node) bool {
	_, found := slices.BinarySearch(b.SharedBy, a.ID)
	return found && len(b.SharedBy) >= 2
}

// BuildCohorts builds the cross-cohort network: professors are tagged with
// their cohort (for example an institution group), coauthors listed by
// professors of two or more distinct cohorts become shared coauthors, and
// every professor is linked to each of their coauthors.
func BuildCohorts(records []profile.Record) *Graph {
	g := New()
	profs := collectProfessors(records)
	for _, p := range profs {
		addProfessor(g, &p.record)
	}

	cohorts := make(map[string]map[string]bool)
	var order []string
	for _, p := range profs {
		for _, c := range p.order {
			if _, ok := cohorts[c]; !ok {
				cohorts[c] = make(map[string]bool)
				order = append(order, c)
			}
			cohorts[c][p.record.Cohort] = true
		}
	}

	for _, c := range order {
		kind := KindCoauthor
		if len(cohorts[c]) >= 2 {
			kind = KindSharedCoauthor
		}
		n := g.AddNode(c, kind)
		if n.Title == "" {
			n.Title = c
		}
		if n.Kind == KindCoauthor {
			for cohort := range cohorts[c] {
				n.Cohort = cohort
			}
		}
	}
	for _, p := range profs {
		for _, c := range p.order {
			g.AddEdge(p.name, c)
		}
	}
	return g
}

// SharedPair is one professor–professor shared connection.
type SharedPair struct {
	A      string   `json:"a"`
	B      string   `json:"b"`
	Weight float64  `json:"weight"`
	Shared []string `json:"shared"`
}

// SharedPairs lists professor–professor edges carrying shared coauthors,
// sorted by endpoint names.
func SharedPairs(g *Graph) []SharedPair {
	var out []SharedPair
	for _, e := range g.edges {
		if len(e.Shared) == 0 {
			continue
		}
		a, _ := g.Node(e.From)
		b, _ := g.Node(e.To)
		if a.Kind != KindProfessor || b.Kind != KindProfessor {
			continue
		}
		out = append(out, SharedPair{
			A:      e.From,
			B:      e.To,
			Weight: e.Weight,
			Shared: slices.Clone(e.Shared),
		})
	}
	slices.SortFunc(out, func(x, y SharedPair) int {
		if c := strings.Compare(x.A, y.A); c != 0 {
			return c
		}
		return strings.Compare(x.B, y.B)
	})
	return out
}

// intersect returns the sorted intersection of two name sets.
func intersect(a, b map[string]bool) []string {
	if len(b) < len(a) {
		a, b = b, a
	}
	var out []string
	for name := range a {
		if b[name] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
