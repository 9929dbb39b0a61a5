package render

import (
	"math"
	"math/rand/v2"

	"github.com/brunobiangulo/coauthornet/graph"
)

const layoutIterations = 200

type point struct{ x, y float64 }

// springLayout places nodes with Fruchterman–Reingold force-directed
// iterations inside a width×height box, leaving margin free on each side.
// The result depends only on the graph and seed.
func springLayout(g *graph.Graph, width, height, margin float64, seed uint64) map[string]point {
	nodes := g.Nodes()
	pos := make(map[string]point, len(nodes))
	n := len(nodes)
	if n == 0 {
		return pos
	}
	if n == 1 {
		pos[nodes[0].ID] = point{width / 2, height / 2}
		return pos
	}

	w, h := width-2*margin, height-2*margin
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	xy := make([]point, n)
	index := make(map[string]int, n)
	for i, nd := range nodes {
		xy[i] = point{rng.Float64() * w, rng.Float64() * h}
		index[nd.ID] = i
	}

	k := math.Sqrt(w * h / float64(n))
	temp := w / 10
	cool := temp / float64(layoutIterations+1)
	disp := make([]point, n)
	edges := g.Edges()

	for it := 0; it < layoutIterations; it++ {
		for i := range disp {
			disp[i] = point{}
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := xy[i].x-xy[j].x, xy[i].y-xy[j].y
				d := math.Max(math.Hypot(dx, dy), 0.01)
				f := k * k / d
				disp[i].x += dx / d * f
				disp[i].y += dy / d * f
				disp[j].x -= dx / d * f
				disp[j].y -= dy / d * f
			}
		}
		for _, e := range edges {
			a, b := index[e.From], index[e.To]
			dx, dy := xy[a].x-xy[b].x, xy[a].y-xy[b].y
			d := math.Max(math.Hypot(dx, dy), 0.01)
			f := d * d / k
			disp[a].x -= dx / d * f
			disp[a].y -= dy / d * f
			disp[b].x += dx / d * f
			disp[b].y += dy / d * f
		}
		for i := range xy {
			l := math.Hypot(disp[i].x, disp[i].y)
			if l > 0 {
				step := math.Min(l, temp)
				xy[i].x += disp[i].x / l * step
				xy[i].y += disp[i].y / l * step
			}
			xy[i].x = math.Min(w, math.Max(0, xy[i].x))
			xy[i].y = math.Min(h, math.Max(0, xy[i].y))
		}
		temp -= cool
	}

	for i, nd := range nodes {
		pos[nd.ID] = point{xy[i].x + margin, xy[i].y + margin}
	}
	return pos
}
