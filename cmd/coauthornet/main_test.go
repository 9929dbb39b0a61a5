package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/brunobiangulo/coauthornet"
	"github.com/brunobiangulo/coauthornet/graph"
	"github.com/brunobiangulo/coauthornet/profile"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func sampleAnalysis() *coauthornet.Analysis {
	rs := []profile.Record{
		{Name: "Ada", Coauthors: []string{"Carol"}},
		{Name: "Bob", Coauthors: []string{"Carol"}},
	}
	opts := graph.DefaultCentralityOptions()
	a := &coauthornet.Analysis{Profiles: rs, Pairs: graph.SharedPairs(graph.BuildShared(rs))}
	for i := range rs {
		g := graph.BuildIndividual(&rs[i])
		a.Individual = append(a.Individual, coauthornet.Network{Name: rs[i].Name, Graph: g, Centrality: graph.Compute(g, opts)})
	}
	g := graph.BuildCombined(rs)
	a.Combined = coauthornet.Network{Name: "Combined Network", Graph: g, Centrality: graph.Compute(g, opts)}
	return a
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := printSummary(&buf, sampleAnalysis()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Network statistics for Ada", "Combined network statistics", "Ada and Bob share 1 coauthor(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestPrintSummaryReportsWriteErrors(t *testing.T) {
	if err := printSummary(failingWriter{}, sampleAnalysis()); err == nil {
		t.Error("expected the write error to be returned")
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs(" a, ,b,c ")
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("splitIDs = %v", got)
	}
}

func TestReadIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	if err := os.WriteFile(path, []byte("# scholars\nabc\n\n  def  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := readIDs(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"abc", "def"}) {
		t.Errorf("readIDs = %v", got)
	}
}
