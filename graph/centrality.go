package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ErrNotConverged is returned by EigenvectorCentrality when the power
// iteration does not settle within the iteration budget.
var ErrNotConverged = errors.New("graph: eigenvector centrality did not converge")

// Defaults for the eigenvector power iteration.
const (
	DefaultMaxIter   = 1000
	DefaultTolerance = 1e-6
)

// CentralityOptions tunes Compute.
type CentralityOptions struct {
	MaxIter   int     `json:"max_iter" yaml:"max_iter"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultCentralityOptions returns MaxIter 1000 and Tolerance 1e-6.
func DefaultCentralityOptions() CentralityOptions {
	return CentralityOptions{MaxIter: DefaultMaxIter, Tolerance: DefaultTolerance}
}

// Scores holds the centrality values of one node. All values lie in [0,1].
type Scores struct {
	Degree      float64 `json:"degree"`
	Closeness   float64 `json:"closeness"`
	Betweenness float64 `json:"betweenness"`
	Eigenvector float64 `json:"eigenvector"`
}

// Report maps every node of a graph to its centrality scores.
type Report struct {
	Nodes                []string          `json:"nodes"` // graph insertion order
	Scores               map[string]Scores `json:"scores"`
	EigenvectorConverged bool              `json:"eigenvector_converged"`
	Iterations           int               `json:"iterations"`
	Warnings             []string          `json:"warnings,omitempty"`
}

// Compute runs all four centrality measures over g. An eigenvector
// iteration that fails to converge never fails the call: its values are
// reported as zero and a warning is attached and logged.
func Compute(g *Graph, opts CentralityOptions) *Report {
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultMaxIter
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	n := g.NodeCount()
	rep := &Report{
		Nodes:                make([]string, n),
		Scores:               make(map[string]Scores, n),
		EigenvectorConverged: true,
	}
	if n == 0 {
		return rep
	}

	degree := degreeCentrality(g)
	closeness := closenessCentrality(g)
	betweenness := betweennessCentrality(g)
	eigen, iters, err := eigenvectorCentrality(g, opts.MaxIter, opts.Tolerance)
	rep.Iterations = iters
	if err != nil {
		rep.EigenvectorConverged = false
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("%v after %d iterations (tolerance %g); eigenvector values set to 0",
				err, iters, opts.Tolerance))
		slog.Warn("centrality: eigenvector power iteration did not converge",
			"nodes", n, "iterations", iters, "tolerance", opts.Tolerance)
		eigen = make([]float64, n)
	}

	for i, node := range g.nodes {
		rep.Nodes[i] = node.ID
		rep.Scores[node.ID] = Scores{
			Degree:      degree[i],
			Closeness:   closeness[i],
			Betweenness: betweenness[i],
			Eigenvector: eigen[i],
		}
	}
	return rep
}

// DegreeCentrality returns degree/(N-1) per node. With fewer than two
// nodes every value is 0.
func DegreeCentrality(g *Graph) map[string]float64 {
	return byID(g, degreeCentrality(g))
}

// ClosenessCentrality returns the reciprocal average shortest-path
// distance of each node to the nodes it can reach, scaled by the fraction
// of the graph that is reachable (Wasserman–Faust).
func ClosenessCentrality(g *Graph) map[string]float64 {
	return byID(g, closenessCentrality(g))
}

// BetweennessCentrality returns the normalized fraction of shortest paths
// passing through each node (Brandes).
func BetweennessCentrality(g *Graph) map[string]float64 {
	return byID(g, betweennessCentrality(g))
}

// EigenvectorCentrality runs the power iteration on the adjacency matrix.
// It returns ErrNotConverged when the L1 change stays above N*tol after
// maxIter rounds.
func EigenvectorCentrality(g *Graph, maxIter int, tol float64) (map[string]float64, error) {
	x, _, err := eigenvectorCentrality(g, maxIter, tol)
	if err != nil {
		return nil, err
	}
	return byID(g, x), nil
}

func byID(g *Graph, v []float64) map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, n := range g.nodes {
		out[n.ID] = v[i]
	}
	return out
}

func degreeCentrality(g *Graph) []float64 {
	n := len(g.nodes)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	scale := 1.0 / float64(n-1)
	for i := range g.adj {
		out[i] = float64(len(g.adj[i])) * scale
	}
	return out
}

// bfsDistances returns hop distances from src; unreachable nodes are -1.
func bfsDistances(g *Graph, src int) []int {
	dist := make([]int, len(g.nodes))
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.adj[v] {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
		}
	}
	return dist
}

func closenessCentrality(g *Graph) []float64 {
	n := len(g.nodes)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	for u := range g.nodes {
		dist := bfsDistances(g, u)
		reached, total := 0, 0
		for _, d := range dist {
			if d >= 0 {
				reached++
				total += d
			}
		}
		if total == 0 {
			continue
		}
		c := float64(reached-1) / float64(total)
		// Component-size correction for disconnected graphs.
		c *= float64(reached-1) / float64(n-1)
		out[u] = c
	}
	return out
}

func betweennessCentrality(g *Graph) []float64 {
	n := len(g.nodes)
	cb := make([]float64, n)
	if n <= 2 {
		return cb
	}

	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)

	for s := 0; s < n; s++ {
		for i := 0; i < n; i++ {
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		sigma[s] = 1
		dist[s] = 0

		stack := make([]int, 0, n)
		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	// Every unordered pair was counted from both ends, so dividing by
	// (n-1)(n-2) normalizes by the number of pairs not involving the node.
	scale := 1.0 / float64((n-1)*(n-2))
	for i := range cb {
		cb[i] *= scale
	}
	return cb
}

// eigenvectorCentrality iterates x <- (A+I)x with L2 normalization from a
// uniform start, stopping once the L1 change drops below n*tol.
func eigenvectorCentrality(g *Graph, maxIter int, tol float64) ([]float64, int, error) {
	n := len(g.nodes)
	if n == 0 {
		return nil, 0, nil
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}

	for iter := 1; iter <= maxIter; iter++ {
		last := x
		x = make([]float64, n)
		copy(x, last)
		for v := range g.adj {
			for _, w := range g.adj[v] {
				x[w] += last[v]
			}
		}

		norm := 0.0
		for _, v := range x {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}

		change := 0.0
		for i := range x {
			x[i] /= norm
			change += math.Abs(x[i] - last[i])
		}
		if change < float64(n)*tol {
			return x, iter, nil
		}
	}
	return nil, maxIter, ErrNotConverged
}
