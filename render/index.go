package render

import (
	"html/template"
	"path/filepath"
)

// Link is one entry of the index page.
type Link struct {
	Title string
	Href  string // relative to OutputDir
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Academic Collaboration Networks</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.nav { margin-bottom: 20px; line-height: 2.6; }
.nav a { padding: 10px 15px; background-color: #f0f0f0; margin-right: 5px; text-decoration: none; color: #333; border-radius: 5px; }
.nav a:hover { background-color: #ddd; }
h1 { color: #2c3e50; }
p, li { line-height: 1.6; }
</style>
</head>
<body>
<h1>Academic Collaboration Network Analysis</h1>
<p>Collaboration networks between academics built from their public profiles.</p>
<div class="nav">
{{range .}}<a href="{{.Href}}" target="_blank">{{.Title}}</a>
{{end}}</div>
<h2>How to Use This Visualization</h2>
<ul>
<li>Red nodes represent professors</li>
<li>Blue nodes represent coauthors</li>
<li>Green nodes represent shared coauthors (connected to multiple professors)</li>
<li>Orange edges between professors indicate shared collaborators</li>
<li>Hover over nodes for more information, drag nodes to rearrange the network and scroll to zoom</li>
</ul>
</body>
</html>
`))

// Index writes index.html linking to the given pages and returns its path.
func (r *Renderer) Index(links []Link) (string, error) {
	path, err := r.path("index.html")
	if err != nil {
		return "", err
	}
	rel := make([]Link, len(links))
	for i, l := range links {
		rel[i] = Link{Title: l.Title, Href: filepath.ToSlash(l.Href)}
	}
	if err := writeTemplate(path, indexTmpl, rel); err != nil {
		return "", err
	}
	return path, nil
}
