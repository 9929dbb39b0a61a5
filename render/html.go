package render

import (
	"bufio"
	"fmt"
	"html/template"
	"math"
	"os"

	"github.com/brunobiangulo/coauthornet/graph"
)

type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Group string `json:"group"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type visEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Width float64 `json:"width"`
	Color string  `json:"color"`
	Title string  `json:"title,omitempty"`
}

type networkPage struct {
	Title   string
	Height  string
	Nodes   []visNode
	Edges   []visEdge
	Physics map[string]any
	Empty   bool
}

// physics returns the layout settings: single-professor networks use a
// Barnes-Hut simulation with long springs, multi-professor networks
// ForceAtlas2.
func physics(g *graph.Graph) (map[string]any, string) {
	if len(g.NodesOfKind(graph.KindProfessor)) <= 1 {
		return map[string]any{
			"solver": "barnesHut",
			"barnesHut": map[string]any{
				"springLength":   200,
				"springConstant": 0.05,
				"damping":        0.09,
			},
			"minVelocity": 0.75,
		}, "750px"
	}
	return map[string]any{
		"solver":           "forceAtlas2Based",
		"forceAtlas2Based": map[string]any{"springLength": 100},
		"minVelocity":      0.75,
	}, "800px"
}

var networkTmpl = template.Must(template.New("network").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
body { font-family: Arial, sans-serif; margin: 0; }
h1 { font-size: 18px; margin: 10px 20px; color: #2c3e50; }
#network { width: 100%; height: {{.Height}}; border-top: 1px solid #ddd; background: #ffffff; }
.legend { margin: 10px 20px; font-size: 13px; }
.legend span { display: inline-block; width: 12px; height: 12px; border-radius: 6px; margin: 0 4px 0 12px; vertical-align: middle; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="legend">
<span style="background:#e41a1c"></span>Professor
<span style="background:#377eb8"></span>Coauthor
<span style="background:#4daf4a"></span>Shared coauthor
</div>
{{if .Empty}}<p class="legend">No connections found.</p>{{end}}
<div id="network"></div>
<script>
var nodes = new vis.DataSet({{.Nodes}});
var edges = new vis.DataSet({{.Edges}});
var options = {
  nodes: { shape: "dot", font: { size: 12 } },
  edges: { color: { inherit: false }, smooth: { enabled: false } },
  physics: {{.Physics}},
  interaction: { hover: true, tooltipDelay: 100 }
};
new vis.Network(document.getElementById("network"), { nodes: nodes, edges: edges }, options);
</script>
</body>
</html>
`))

// Interactive writes the network as <stem>.html, a self-contained
// vis-network page, and returns the file path.
func (r *Renderer) Interactive(stem, title string, g *graph.Graph) (string, error) {
	page := newPage(title, g)
	for _, n := range g.Nodes() {
		color, size := NodeStyle(n.Kind)
		hover := n.Title
		if hover == "" {
			hover = n.ID
		}
		page.Nodes = append(page.Nodes, visNode{
			ID: n.ID, Label: n.Label, Title: hover, Group: string(n.Kind), Color: color, Size: size,
		})
	}
	for _, e := range g.Edges() {
		color, width, hover := EdgeStyle(g, e)
		page.Edges = append(page.Edges, visEdge{From: e.From, To: e.To, Width: width, Color: color, Title: hover})
	}
	return r.writePage(stem+".html", page)
}

// Centrality node sizes: professors are fixed, everyone else grows with
// degree centrality.
const (
	SizeCentralityProfessor = 30
	SizeCentralityBase      = 20
	SizeCentralityScale     = 50
)

// CentralityPage writes the network as centrality_<stem>.html. Node sizes
// follow degree centrality and the hover text lists all four measures.
func (r *Renderer) CentralityPage(stem, title string, g *graph.Graph, rep *graph.Report) (string, error) {
	page := newPage(title+" - Centrality", g)
	for _, n := range g.Nodes() {
		s := rep.Scores[n.ID]
		color, size := ColorCoauthor, SizeCentralityBase+int(math.Round(s.Degree*SizeCentralityScale))
		if n.Kind == graph.KindProfessor {
			color, size = ColorProfessor, SizeCentralityProfessor
		}
		page.Nodes = append(page.Nodes, visNode{
			ID: n.ID, Label: n.Label, Title: CentralityHover(n.ID, s),
			Group: string(n.Kind), Color: color, Size: size,
		})
	}
	for _, e := range g.Edges() {
		page.Edges = append(page.Edges, visEdge{From: e.From, To: e.To, Width: 1, Color: ColorEdge})
	}
	return r.writePage("centrality_"+stem+".html", page)
}

// CentralityHover formats the hover text of a node on a centrality page.
func CentralityHover(id string, s graph.Scores) string {
	return fmt.Sprintf("%s\nDegree: %.3f\nCloseness: %.3f\nBetweenness: %.3f\nEigenvector: %.3f",
		id, s.Degree, s.Closeness, s.Betweenness, s.Eigenvector)
}

func newPage(title string, g *graph.Graph) networkPage {
	page := networkPage{Title: title, Nodes: []visNode{}, Edges: []visEdge{}}
	page.Empty = g.EdgeCount() == 0
	page.Physics, page.Height = physics(g)
	return page
}

func (r *Renderer) writePage(file string, page networkPage) (string, error) {
	path, err := r.path(file)
	if err != nil {
		return "", err
	}
	if err := writeTemplate(path, networkTmpl, page); err != nil {
		return "", err
	}
	return path, nil
}

func writeTemplate(path string, t *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := t.Execute(w, data); err != nil {
		f.Close()
		return fmt.Errorf("render: execute %s: %w", t.Name(), err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return f.Close()
}
