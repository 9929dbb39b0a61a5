package profile

import (
	"slices"
	"time"
)

// Record is one academic's public profile as returned by a fetch step.
// It is treated as immutable once built.
type Record struct {
	ScholarID   string    `json:"scholar_id"`
	Name        string    `json:"name"`
	Affiliation string    `json:"affiliation,omitempty"`
	Interests   []string  `json:"interests,omitempty"`
	CitedBy     int       `json:"cited_by"`
	HIndex      int       `json:"h_index"`
	I10Index    int       `json:"i10_index"`
	Cohort      string    `json:"cohort,omitempty"`
	Coauthors   []string  `json:"coauthors"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
}

// CoauthorSet returns the distinct, non-empty coauthor names of r. The
// record's own name is excluded.
func (r *Record) CoauthorSet() map[string]bool {
	set := make(map[string]bool, len(r.Coauthors))
	for _, c := range r.Coauthors {
		if c == "" || c == r.Name {
			continue
		}
		set[c] = true
	}
	return set
}

// DistinctCoauthors returns CoauthorSet in first-seen order.
func (r *Record) DistinctCoauthors() []string {
	seen := make(map[string]bool, len(r.Coauthors))
	out := make([]string, 0, len(r.Coauthors))
	for _, c := range r.Coauthors {
		if c == "" || c == r.Name || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Interests = slices.Clone(r.Interests)
	r.Coauthors = slices.Clone(r.Coauthors)
	return r
}
