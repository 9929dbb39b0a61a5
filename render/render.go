// Package render draws collaboration graphs as interactive HTML pages,
// static SVG images and centrality charts inside one output directory.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/brunobiangulo/coauthornet/graph"
)

// Node and edge colours.
const (
	ColorProfessor      = "#e41a1c"
	ColorCoauthor       = "#377eb8"
	ColorSharedCoauthor = "#4daf4a"
	ColorProfEdge       = "#ff9900"
	ColorEdge           = "#999999"
	ColorDefault        = "#cccccc"
)

// Node sizes by kind.
const (
	SizeProfessor      = 25
	SizeCoauthor       = 15
	SizeSharedCoauthor = 20
)

// Renderer writes visualizations into OutputDir. It creates the directory
// on first use and never changes the process working directory.
type Renderer struct {
	OutputDir string
	// Seed fixes the static layout so repeated runs draw the same picture.
	Seed uint64
}

// New returns a Renderer writing into dir.
func New(dir string) *Renderer {
	return &Renderer{OutputDir: dir, Seed: 42}
}

func (r *Renderer) path(file string) (string, error) {
	dir := r.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("render: create output dir: %w", err)
	}
	return filepath.Join(dir, file), nil
}

// Slug turns a display name into a file name stem: lower case, with runs of
// anything but letters and digits replaced by a single underscore.
func Slug(name string) string {
	var b strings.Builder
	under := false
	for _, c := range strings.ToLower(name) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
			under = false
			continue
		}
		if !under && b.Len() > 0 {
			b.WriteByte('_')
			under = true
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "network"
	}
	return s
}

// NodeStyle returns the colour and size used for a node kind.
func NodeStyle(k graph.Kind) (color string, size int) {
	switch k {
	case graph.KindProfessor:
		return ColorProfessor, SizeProfessor
	case graph.KindCoauthor:
		return ColorCoauthor, SizeCoauthor
	case graph.KindSharedCoauthor:
		return ColorSharedCoauthor, SizeSharedCoauthor
	default:
		return ColorDefault, SizeCoauthor
	}
}

// EdgeStyle returns the colour, width and hover text of an edge.
// Professor–professor edges are highlighted and scale with their weight.
func EdgeStyle(g *graph.Graph, e *graph.Edge) (color string, width float64, title string) {
	a, _ := g.Node(e.From)
	b, _ := g.Node(e.To)
	if a != nil && b != nil && a.Kind == graph.KindProfessor && b.Kind == graph.KindProfessor {
		title = "Shared coauthors: " + strings.Join(e.Shared, ", ")
		if len(e.Shared) == 0 && e.Direct {
			title = "Direct coauthors"
		}
		return ColorProfEdge, 3 * e.Weight, title
	}
	return ColorEdge, 1, ""
}
