package render

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/brunobiangulo/coauthornet/graph"
)

// maxChartNodes caps the bars drawn per chart.
const maxChartNodes = 20

var measureColors = []struct {
	label, color string
	value        func(graph.Scores) float64
}{
	{"Degree", "#1f3ab4", func(s graph.Scores) float64 { return s.Degree }},
	{"Closeness", "#2ca02c", func(s graph.Scores) float64 { return s.Closeness }},
	{"Betweenness", "#d62728", func(s graph.Scores) float64 { return s.Betweenness }},
	{"Eigenvector", "#9467bd", func(s graph.Scores) float64 { return s.Eigenvector }},
}

// CentralityChart writes a grouped bar chart of the four centrality
// measures for the highest-degree nodes of rep to <stem>_centrality.svg
// and returns the file path.
func (r *Renderer) CentralityChart(stem, title string, rep *graph.Report) (string, error) {
	ids := slices.Clone(rep.Nodes)
	slices.SortStableFunc(ids, func(a, b string) int {
		if c := cmp.Compare(rep.Scores[b].Degree, rep.Scores[a].Degree); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(ids) > maxChartNodes {
		ids = ids[:maxChartNodes]
	}

	const (
		left, top, bottom = 60.0, 50.0, 160.0
		groupW, barW      = 48.0, 10.0
		plotH             = 300.0
	)
	width := left + groupW*float64(max(len(ids), 1)) + 40
	height := top + plotH + bottom

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" font-family="Arial, sans-serif">`+"\n", width, height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(&b, `<text x="%.0f" y="24" font-size="16" text-anchor="middle">%s</text>`+"\n",
		width/2, escape("Centrality Measures for "+title))

	base := top + plotH
	fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#333"/>`+"\n", left, top, left, base)
	fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#333"/>`+"\n", left, base, width-20, base)
	for _, tick := range []float64{0, 0.25, 0.5, 0.75, 1} {
		y := base - tick*plotH
		fmt.Fprintf(&b, `<text x="%.0f" y="%.1f" font-size="10" text-anchor="end">%.2f</text>`+"\n", left-6, y+3, tick)
	}

	for i, id := range ids {
		x0 := left + float64(i)*groupW + 4
		s := rep.Scores[id]
		for j, m := range measureColors {
			v := m.value(s)
			h := v * plotH
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.0f" height="%.1f" fill="%s"><title>%s %s: %.4f</title></rect>`+"\n",
				x0+float64(j)*barW, base-h, barW, h, m.color, escape(id), m.label, v)
		}
		lx, ly := x0+2*barW, base+12
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="9" text-anchor="end" transform="rotate(-45 %.1f %.1f)">%s</text>`+"\n",
			lx, ly, lx, ly, escape(id))
	}

	for j, m := range measureColors {
		x := left + float64(j)*110
		y := height - 20
		fmt.Fprintf(&b, `<rect x="%.0f" y="%.0f" width="10" height="10" fill="%s"/><text x="%.0f" y="%.0f" font-size="11">%s</text>`+"\n",
			x, y-9, m.color, x+14, y, m.label)
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(&b, `<text x="%.0f" y="40" font-size="10" fill="#d62728">%s</text>`+"\n", left, escape(w))
	}
	b.WriteString("</svg>\n")

	path, err := r.path(stem + "_centrality.svg")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("render: write %s: %w", path, err)
	}
	return path, nil
}
