package report

import (
	"fmt"
	"io"

	"github.com/brunobiangulo/coauthornet/graph"
)

// PrintSharedConnections writes a human-readable listing of the professor
// pairs and the coauthors they share.
func PrintSharedConnections(w io.Writer, pairs []graph.SharedPair) error {
	if _, err := fmt.Fprintln(w, "Shared Connections Analysis:"); err != nil {
		return err
	}
	if len(pairs) == 0 {
		_, err := fmt.Fprintln(w, "No shared connections found between professors")
		return err
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "\n%s and %s share %d coauthor(s):\n", p.A, p.B, len(p.Shared)); err != nil {
			return err
		}
		for _, s := range p.Shared {
			if _, err := fmt.Fprintf(w, "  - %s\n", s); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintStatistics writes the centrality table of one network.
func PrintStatistics(w io.Writer, title string, g *graph.Graph, rep *graph.Report) error {
	if _, err := fmt.Fprintf(w, "\nStatistical Measures for %s\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-32s %10s %10s %12s %12s\n",
		"Node", "Degree", "Closeness", "Betweenness", "Eigenvector"); err != nil {
		return err
	}
	for _, r := range CentralityRows(g, rep) {
		if _, err := fmt.Fprintf(w, "%-32s %10.4f %10.4f %12.4f %12.4f\n",
			truncate(r.Node, 32), r.Degree, r.Closeness, r.Betweenness, r.Eigenvector); err != nil {
			return err
		}
	}
	for _, warn := range rep.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warn); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
