package graph

// Neighborhood returns the subgraph induced by the seed nodes and every
// node within maxDepth hops of them. Unknown seeds are ignored; a negative
// depth or no known seed yields an empty graph.
func Neighborhood(g *Graph, seeds []string, maxDepth int) *Graph {
	if len(seeds) == 0 || maxDepth < 0 {
		return New()
	}

	visited := make(map[int]bool)
	var order []int
	queue := make([]int, 0, len(seeds))
	for _, s := range seeds {
		i, ok := g.index[s]
		if !ok || visited[i] {
			continue
		}
		visited[i] = true
		order = append(order, i)
		queue = append(queue, i)
	}
	if len(queue) == 0 {
		return New()
	}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []int
		for _, v := range queue {
			for _, w := range g.adj[v] {
				if !visited[w] {
					visited[w] = true
					order = append(order, w)
					next = append(next, w)
				}
			}
		}
		queue = next
	}

	return g.Subgraph(g.ids(order))
}
