package graph

import (
	"log/slog"
	"slices"
)

// minComponentSplit is the minimum component size eligible for further
// modularity-based splitting.
const minComponentSplit = 6

// maxModularityNodes caps the node count for the modularity optimisation.
// Components larger than this are kept as level-0 only.
const maxModularityNodes = 200

// Community is a group of node IDs. Level 0 communities are connected
// components; level 1 communities split a level 0 component.
type Community struct {
	Level   int      `json:"level"`
	Parent  int      `json:"parent"` // index of the level-0 community, -1 at level 0
	Members []string `json:"members"`
}

// weighted is a weighted edge in the index-based adjacency list.
type weighted struct {
	to     int
	weight float64
}

// DetectCommunities groups the graph into collaboration clusters. Level-0
// communities are connected components in order of their first node.
// Components of minComponentSplit..maxModularityNodes nodes are further
// split with greedy modularity optimisation and returned as level-1
// communities right after their parent.
func DetectCommunities(g *Graph) []Community {
	if g.NodeCount() == 0 {
		return nil
	}

	adj := make([][]weighted, len(g.nodes))
	totalWeight := 0.0
	for _, e := range g.edges {
		a, b := g.index[e.From], g.index[e.To]
		adj[a] = append(adj[a], weighted{to: b, weight: e.Weight})
		adj[b] = append(adj[b], weighted{to: a, weight: e.Weight})
		totalWeight += e.Weight
	}

	components := Components(g)
	slog.Debug("community: components found",
		"components", len(components), "largest", largestComp(components))

	var out []Community
	for _, comp := range components {
		parent := len(out)
		out = append(out, Community{Level: 0, Parent: -1, Members: g.ids(comp)})

		if len(comp) >= minComponentSplit && len(comp) <= maxModularityNodes && totalWeight > 0 {
			subs := splitCluster(comp, adj, totalWeight)
			if len(subs) <= 1 {
				continue
			}
			for _, sub := range subs {
				out = append(out, Community{Level: 1, Parent: parent, Members: g.ids(sub)})
			}
		}
	}
	return out
}

// Components returns the connected components as node indices, via BFS in
// insertion order.
func Components(g *Graph) [][]int {
	visited := make([]bool, len(g.nodes))
	var components [][]int
	for i := range g.nodes {
		if visited[i] {
			continue
		}
		var comp []int
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, node)
			for _, to := range g.adj[node] {
				if !visited[to] {
					visited[to] = true
					queue = append(queue, to)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

func (g *Graph) ids(idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = g.nodes[j].ID
	}
	return out
}

func largestComp(comps [][]int) int {
	max := 0
	for _, c := range comps {
		if len(c) > max {
			max = len(c)
		}
	}
	return max
}

// maxLocalMovePasses bounds the local-moving sweeps of splitCluster.
const maxLocalMovePasses = 20

// clusterSplitter holds the state of one local-moving run over a single
// collaboration cluster. Nodes are addressed by their position in members.
type clusterSplitter struct {
	members  []int       // graph node indices of the cluster
	local    map[int]int // graph index -> position in members
	adj      [][]weighted
	label    []int     // label[i] is the group of members[i]
	strength []float64 // weighted degree inside the cluster
	total    []float64 // summed strength per group label
	m2       float64   // twice the total edge weight of the graph
}

func newClusterSplitter(members []int, adj [][]weighted, totalWeight float64) *clusterSplitter {
	cs := &clusterSplitter{
		members:  members,
		local:    make(map[int]int, len(members)),
		adj:      adj,
		label:    make([]int, len(members)),
		strength: make([]float64, len(members)),
		total:    make([]float64, len(members)),
		m2:       2 * totalWeight,
	}
	for i, node := range members {
		cs.local[node] = i
		cs.label[i] = i
	}
	for i, node := range members {
		for _, e := range adj[node] {
			if _, ok := cs.local[e.to]; ok {
				cs.strength[i] += e.weight
			}
		}
		cs.total[i] = cs.strength[i]
	}
	return cs
}

// linkWeights sums the weight from member i into each neighbouring group.
// Groups are listed in neighbour order so ties resolve the same way on
// every run.
func (cs *clusterSplitter) linkWeights(i int) (map[int]float64, []int) {
	w := make(map[int]float64)
	var order []int
	for _, e := range cs.adj[cs.members[i]] {
		j, ok := cs.local[e.to]
		if !ok {
			continue
		}
		g := cs.label[j]
		if _, seen := w[g]; !seen {
			order = append(order, g)
		}
		w[g] += e.weight
	}
	return w, order
}

// gain is the modularity change of placing a node with strength k and
// link weight in into a group whose summed strength is sigma:
// in/2m - sigma*k/(2m)^2.
func (cs *clusterSplitter) gain(in, sigma, k float64) float64 {
	return in/cs.m2 - sigma*k/(cs.m2*cs.m2)
}

// sweep moves every member to the neighbouring group with the best
// positive modularity gain and reports whether anything moved.
func (cs *clusterSplitter) sweep() bool {
	moved := false
	for i := range cs.members {
		w, order := cs.linkWeights(i)
		k := cs.strength[i]
		cur := cs.label[i]
		leave := cs.gain(w[cur], cs.total[cur], k)

		best, bestGain := cur, 0.0
		for _, g := range order {
			if g == cur {
				continue
			}
			if d := cs.gain(w[g], cs.total[g], k) - leave; d > bestGain {
				best, bestGain = g, d
			}
		}
		if best != cur {
			cs.total[cur] -= k
			cs.total[best] += k
			cs.label[i] = best
			moved = true
		}
	}
	return moved
}

// groups returns the members grouped by label, each sorted, ordered by
// their smallest node index.
func (cs *clusterSplitter) groups() [][]int {
	byLabel := make(map[int][]int)
	for i, node := range cs.members {
		byLabel[cs.label[i]] = append(byLabel[cs.label[i]], node)
	}
	out := make([][]int, 0, len(byLabel))
	for _, g := range byLabel {
		slices.Sort(g)
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

// splitCluster divides one collaboration cluster into tighter groups by
// greedy local moving on modularity: every node starts alone and joins the
// neighbouring group that raises modularity most, until a sweep changes
// nothing. Professors who share many coauthors end up together. A cluster
// that does not split comes back whole.
func splitCluster(members []int, adj [][]weighted, totalWeight float64) [][]int {
	if len(members) < minComponentSplit || totalWeight == 0 {
		return [][]int{members}
	}
	cs := newClusterSplitter(members, adj, totalWeight)
	for pass := 0; pass < maxLocalMovePasses; pass++ {
		if !cs.sweep() {
			break
		}
	}
	out := cs.groups()
	if len(out) <= 1 {
		return [][]int{members}
	}
	return out
}
