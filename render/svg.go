package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"

	"github.com/brunobiangulo/coauthornet/graph"
)

// Static image geometry.
const (
	svgWidth  = 1200.0
	svgHeight = 800.0
	svgMargin = 60.0
)

func escape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Static writes the network as <stem>.svg, laid out with a seeded spring
// layout, and returns the file path.
func (r *Renderer) Static(stem, title string, g *graph.Graph) (string, error) {
	pos := springLayout(g, svgWidth, svgHeight, svgMargin, r.Seed)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="Arial, sans-serif">`+"\n",
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(&b, `<text x="%.0f" y="30" font-size="20" text-anchor="middle">%s</text>`+"\n",
		svgWidth/2, escape("Collaboration Network - "+title))

	b.WriteString(`<g stroke-opacity="0.7">` + "\n")
	for _, e := range g.Edges() {
		color, width, _ := EdgeStyle(g, e)
		p, q := pos[e.From], pos[e.To]
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%g"/>`+"\n",
			p.x, p.y, q.x, q.y, color, width)
	}
	b.WriteString("</g>\n<g>\n")
	for _, n := range g.Nodes() {
		color, size := NodeStyle(n.Kind)
		p := pos[n.ID]
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.85"><title>%s</title></circle>`+"\n",
			p.x, p.y, float64(size)*0.6, color, escape(n.Title))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="8" text-anchor="middle">%s</text>`+"\n",
			p.x, p.y+float64(size)*0.6+10, escape(n.Label))
	}
	b.WriteString("</g>\n")
	writeLegend(&b, 20, svgHeight-70)
	b.WriteString("</svg>\n")

	path, err := r.path(stem + ".svg")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("render: write %s: %w", path, err)
	}
	return path, nil
}

func writeLegend(b *bytes.Buffer, x, y float64) {
	for i, item := range []struct{ color, label string }{
		{ColorProfessor, "Professor"},
		{ColorCoauthor, "Coauthor"},
		{ColorSharedCoauthor, "Shared coauthor"},
	} {
		cy := y + float64(i)*18
		fmt.Fprintf(b, `<circle cx="%.0f" cy="%.0f" r="6" fill="%s"/><text x="%.0f" y="%.0f" font-size="12">%s</text>`+"\n",
			x, cy, item.color, x+12, cy+4, item.label)
	}
}
