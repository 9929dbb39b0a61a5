package profile

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var honorifics = map[string]bool{
	"dr": true, "prof": true, "professor": true, "mr": true, "mrs": true, "ms": true,
}

var folder = cases.Fold()

// NormalizeName reduces a display name to a comparison key: diacritics are
// stripped, case is folded, punctuation is dropped and leading honorifics
// are removed. "Dr. José  García" and "jose garcia" share a key.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = folder.String(s)

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r), r == '-', r == '.', r == ',':
			return ' '
		default:
			return -1
		}
	}, s)

	fields := strings.Fields(s)
	for len(fields) > 1 && honorifics[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// NameVariant groups spellings that probably denote the same person.
type NameVariant struct {
	Canonical string   `json:"canonical"` // first spelling seen
	Variants  []string `json:"variants"`  // other spellings, in first-seen order
	// InitialOnly marks groups that only match when a given name is
	// compared with its initial ("J Smith" and "John Smith").
	InitialOnly bool `json:"initial_only,omitempty"`
}

// NameVariants reports spellings in names that share a NormalizeName key,
// and spellings whose keys differ only by an abbreviated first name.
// Identical strings are not variants of each other.
func NameVariants(names []string) []NameVariant {
	groups, order := groupByKey(names)

	var out []NameVariant
	for _, key := range order {
		if spellings := groups[key]; len(spellings) > 1 {
			out = append(out, NameVariant{Canonical: spellings[0], Variants: spellings[1:]})
		}
	}

	// Initial matches: "j smith" against "john smith".
	for i, a := range order {
		for _, b := range order[i+1:] {
			if initialMatch(a, b) || initialMatch(b, a) {
				out = append(out, NameVariant{
					Canonical:   groups[a][0],
					Variants:    []string{groups[b][0]},
					InitialOnly: true,
				})
			}
		}
	}
	return out
}

func groupByKey(names []string) (map[string][]string, []string) {
	groups := make(map[string][]string)
	var order []string
	seen := make(map[string]bool)
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		key := NormalizeName(n)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], n)
	}
	return groups, order
}

// initialMatch reports whether short abbreviates long's first name and the
// remaining tokens are equal.
func initialMatch(short, long string) bool {
	s, l := strings.Fields(short), strings.Fields(long)
	if len(s) < 2 || len(s) != len(l) {
		return false
	}
	if len([]rune(s[0])) != 1 || len([]rune(l[0])) < 2 {
		return false
	}
	if []rune(s[0])[0] != []rune(l[0])[0] {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != l[i] {
			return false
		}
	}
	return true
}

// Canonicalize rewrites every professor and coauthor name to the first
// spelling seen with the same NormalizeName key. Initial-only matches are
// reported but left untouched. The input is not modified.
func Canonicalize(records []Record) ([]Record, []NameVariant) {
	var all []string
	for _, r := range records {
		all = append(all, r.Name)
		all = append(all, r.Coauthors...)
	}
	variants := NameVariants(all)

	rewrite := make(map[string]string)
	for _, v := range variants {
		if v.InitialOnly {
			slog.Warn("names: possible initial-only variant left unmerged",
				"name", v.Canonical, "variant", v.Variants[0])
			continue
		}
		for _, s := range v.Variants {
			rewrite[s] = v.Canonical
		}
		slog.Info("names: merging spelling variants",
			"canonical", v.Canonical, "variants", strings.Join(v.Variants, "; "))
	}

	out := make([]Record, len(records))
	for i, r := range records {
		c := r.Clone()
		if to, ok := rewrite[c.Name]; ok {
			c.Name = to
		}
		for j, name := range c.Coauthors {
			if to, ok := rewrite[name]; ok {
				c.Coauthors[j] = to
			}
		}
		out[i] = c
	}
	return out, variants
}

// WarnVariants logs each variant group without changing any record.
func WarnVariants(records []Record) []NameVariant {
	var all []string
	for _, r := range records {
		all = append(all, r.Name)
		all = append(all, r.Coauthors...)
	}
	variants := NameVariants(all)
	for _, v := range variants {
		slog.Warn("names: spellings may denote the same person",
			"name", v.Canonical, "variants", strings.Join(v.Variants, "; "),
			"initial_only", v.InitialOnly)
	}
	return variants
}
