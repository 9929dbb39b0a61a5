// Package report writes analysis results as CSV files, an Excel workbook
// and plain-text summaries.
package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/brunobiangulo/coauthornet/graph"
)

// CentralityHeader is the column layout of WriteCentralityCSV.
var CentralityHeader = []string{"Node", "Kind", "Degree", "Closeness", "Betweenness", "Eigenvector"}

// SharedHeader is the column layout of WriteSharedCSV.
var SharedHeader = []string{"Professor A", "Professor B", "Weight", "Shared Coauthors"}

// Row is one node's centrality scores.
type Row struct {
	Node string
	Kind graph.Kind
	graph.Scores
}

// CentralityRows returns one row per node of rep, highest degree first and
// ties broken by node name.
func CentralityRows(g *graph.Graph, rep *graph.Report) []Row {
	rows := make([]Row, 0, len(rep.Nodes))
	for _, id := range rep.Nodes {
		r := Row{Node: id, Scores: rep.Scores[id]}
		if n, ok := g.Node(id); ok {
			r.Kind = n.Kind
		}
		rows = append(rows, r)
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Degree, a.Degree); c != 0 {
			return c
		}
		return strings.Compare(a.Node, b.Node)
	})
	return rows
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCentralityCSV writes the centrality scores of every node.
func WriteCentralityCSV(w io.Writer, g *graph.Graph, rep *graph.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CentralityHeader); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, r := range CentralityRows(g, rep) {
		if err := cw.Write([]string{
			r.Node, string(r.Kind),
			formatScore(r.Degree), formatScore(r.Closeness),
			formatScore(r.Betweenness), formatScore(r.Eigenvector),
		}); err != nil {
			return fmt.Errorf("report: write %s: %w", r.Node, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSharedCSV writes one row per professor pair with shared coauthors.
func WriteSharedCSV(w io.Writer, pairs []graph.SharedPair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SharedHeader); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, p := range pairs {
		if err := cw.Write([]string{
			p.A, p.B, strconv.FormatFloat(p.Weight, 'f', -1, 64), strings.Join(p.Shared, ";"),
		}); err != nil {
			return fmt.Errorf("report: write %s/%s: %w", p.A, p.B, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
