package render

import "strconv"

// Stems hands out distinct file name stems for one output directory, so two
// networks whose names slug alike never overwrite each other's files. A stem
// also claims the names derived from it (centrality_<stem>, <stem>_centrality
// and statistics_<stem>).
type Stems struct {
	used map[string]bool
}

// NewStems returns an allocator with the given stems already taken.
func NewStems(reserved ...string) *Stems {
	s := &Stems{used: make(map[string]bool)}
	for _, r := range reserved {
		s.used[r] = true
	}
	return s
}

func derivedStems(stem string) []string {
	return []string{stem, "centrality_" + stem, stem + "_centrality", "statistics_" + stem}
}

// Next returns Slug(name), or Slug(name) with the first free numeric
// suffix (_2, _3, ...) when that is taken.
func (s *Stems) Next(name string) string {
	base := Slug(name)
	for i := 1; ; i++ {
		stem := base
		if i > 1 {
			stem = base + "_" + strconv.Itoa(i)
		}
		if s.free(stem) {
			for _, d := range derivedStems(stem) {
				s.used[d] = true
			}
			return stem
		}
	}
}

func (s *Stems) free(stem string) bool {
	for _, d := range derivedStems(stem) {
		if s.used[d] {
			return false
		}
	}
	return true
}
