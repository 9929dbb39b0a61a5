package profile

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoName is returned when a profile page carries no profile name.
var ErrNoName = errors.New("profile page has no name")

// Positions of the citation indices in the stats table: each metric has an
// "all" and a "since" column.
const (
	statCitations = 0
	statHIndex    = 2
	statI10Index  = 4
)

func parseProfile(doc *html.Node) (*Record, error) {
	rec := &Record{}

	if n := findFirst(doc, func(n *html.Node) bool { return attr(n, "id") == "gsc_prf_in" }); n != nil {
		rec.Name = textOf(n)
	}
	if rec.Name == "" {
		return nil, ErrNoName
	}

	if n := findFirst(doc, byClass(atom.Div, "gsc_prf_il")); n != nil {
		rec.Affiliation = textOf(n)
	}
	for _, n := range findAll(doc, byClass(atom.A, "gsc_prf_inta")) {
		if s := textOf(n); s != "" {
			rec.Interests = append(rec.Interests, s)
		}
	}

	stats := findAll(doc, byClass(atom.Td, "gsc_rsb_std"))
	rec.CitedBy = statAt(stats, statCitations)
	rec.HIndex = statAt(stats, statHIndex)
	rec.I10Index = statAt(stats, statI10Index)
	return rec, nil
}

// parseColleagues reads the names from a colleagues list page.
func parseColleagues(doc *html.Node, self string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, h := range findAll(doc, byClass(atom.H3, "gs_ai_name")) {
		a := findFirst(h, func(n *html.Node) bool { return n.DataAtom == atom.A })
		if a == nil {
			continue
		}
		out = appendName(out, seen, textOf(a), self)
	}
	return out
}

// parsePublicationAuthors collects the author line of every publication
// row, splitting on ", ". Truncation markers and the profile's own name are
// dropped.
func parsePublicationAuthors(doc *html.Node, self string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, row := range findAll(doc, byClass(atom.Tr, "gsc_a_tr")) {
		gray := findFirst(row, byClass(atom.Div, "gs_gray"))
		if gray == nil {
			continue
		}
		for _, name := range strings.Split(textOf(gray), ", ") {
			out = appendName(out, seen, name, self)
		}
	}
	return out
}

func appendName(out []string, seen map[string]bool, name, self string) []string {
	name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "..."))
	if name == "" || name == "..." || name == self || seen[name] {
		return out
	}
	seen[name] = true
	return append(out, name)
}

func statAt(cells []*html.Node, i int) int {
	if i >= len(cells) {
		return 0
	}
	s := strings.ReplaceAll(textOf(cells[i]), ",", "")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func byClass(a atom.Atom, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.DataAtom == a && hasClass(n, class)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// textOf returns the concatenated text below n with runs of whitespace
// collapsed.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
