package profile

import (
	"slices"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Doe", "jane doe"},
		{"  JANE   DOE ", "jane doe"},
		{"José García", "jose garcia"},
		{"Dr. Jane Doe", "jane doe"},
		{"Prof. Dr. Jane Doe", "jane doe"},
		{"Jean-Luc Picard", "jean luc picard"},
		{"O'Brien", "obrien"},
		{"Dr", "dr"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameVariants(t *testing.T) {
	vs := NameVariants([]string{
		"José García", "Jane Doe", "Jose Garcia", "jose garcia", "J Doe", "Jane Doe",
	})

	var merged, initials []NameVariant
	for _, v := range vs {
		if v.InitialOnly {
			initials = append(initials, v)
		} else {
			merged = append(merged, v)
		}
	}
	if len(merged) != 1 {
		t.Fatalf("variant groups = %+v, want one", merged)
	}
	if merged[0].Canonical != "José García" ||
		!slices.Equal(merged[0].Variants, []string{"Jose Garcia", "jose garcia"}) {
		t.Errorf("group = %+v", merged[0])
	}
	if len(initials) != 1 || initials[0].Canonical != "Jane Doe" || initials[0].Variants[0] != "J Doe" {
		t.Errorf("initial-only groups = %+v", initials)
	}
}

func TestCanonicalize(t *testing.T) {
	in := []Record{
		{Name: "P1", Coauthors: []string{"José García", "J Smith"}},
		{Name: "P2", Coauthors: []string{"Jose Garcia", "John Smith"}},
	}
	out, variants := Canonicalize(in)

	if len(variants) != 2 {
		t.Errorf("variants = %+v, want 2", variants)
	}
	if out[1].Coauthors[0] != "José García" {
		t.Errorf("variant not rewritten: %v", out[1].Coauthors)
	}
	if out[0].Coauthors[1] != "J Smith" || out[1].Coauthors[1] != "John Smith" {
		t.Errorf("initial-only names must stay distinct: %v / %v", out[0].Coauthors, out[1].Coauthors)
	}
	if in[1].Coauthors[0] != "Jose Garcia" {
		t.Error("input records were modified")
	}
}
