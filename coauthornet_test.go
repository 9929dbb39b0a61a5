//go:build cgo

package coauthornet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunobiangulo/coauthornet/graph"
	"github.com/brunobiangulo/coauthornet/profile"
)

var fixtures = map[string]profile.Record{
	"ada": {ScholarID: "ada", Name: "Ada Lovelace", Affiliation: "Analytical Engines", Coauthors: []string{"Charles Babbage", "Mary Somerville", "Augustus De Morgan"}},
	"bob": {ScholarID: "bob", Name: "Bob Boole", Affiliation: "Cork", Coauthors: []string{"Augustus De Morgan", "Charles Babbage", "John Venn"}},
	"cat": {ScholarID: "cat", Name: "Cat Herschel", Affiliation: "Slough", Coauthors: []string{"Mary Somerville"}},
}

type fakeExporter struct {
	runID string
	nodes int
}

func (f *fakeExporter) Load(_ context.Context, runID string, g *graph.Graph) error {
	f.runID, f.nodes = runID, g.NodeCount()
	return nil
}

func newTestEngine(t *testing.T, opts ...Option) (Engine, Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(dir, "test.db")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.FetchDelay = 0
	cfg.VectorDim = 128

	fetch := profile.FetcherFunc(func(_ context.Context, id string) (*profile.Record, error) {
		r, ok := fixtures[id]
		if !ok {
			return nil, errors.New("no such profile")
		}
		c := r.Clone()
		return &c, nil
	})
	e, err := New(cfg, append([]Option{WithFetcher(fetch)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scholar.Source = "nowhere"
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestFetchProfilesSkipsFailures(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	records, err := e.FetchProfiles(ctx, []string{"ada", "missing", "bob"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	cached, err := e.ListProfiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 2 {
		t.Errorf("cached %d profiles, want 2", len(cached))
	}

	if _, err := e.FetchProfiles(ctx, []string{"missing"}); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("all-failed fetch: err = %v, want ErrFetchFailed", err)
	}
	if _, err := e.FetchProfiles(ctx, nil); !errors.Is(err, ErrNoProfiles) {
		t.Errorf("empty fetch: err = %v, want ErrNoProfiles", err)
	}
}

func TestAnalyze(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	records := []profile.Record{fixtures["ada"], fixtures["bob"], fixtures["cat"]}

	a, err := e.Analyze(ctx, records)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Individual) != 3 {
		t.Errorf("individual networks = %d, want 3", len(a.Individual))
	}
	// Ada-Bob share Babbage and De Morgan; Ada-Cat share Somerville.
	if len(a.Pairs) != 2 {
		t.Fatalf("pairs = %+v", a.Pairs)
	}
	if p := a.Pairs[0]; p.A != "Ada Lovelace" || p.B != "Bob Boole" || p.Weight != 2 {
		t.Errorf("first pair = %+v", p)
	}
	if a.Cohorts != nil {
		t.Error("cohort network built without cohorts")
	}
	if a.RunID == "" || a.RunID != a.Combined.RunID {
		t.Errorf("run id = %q, combined = %q", a.RunID, a.Combined.RunID)
	}
	if !a.Combined.Centrality.EigenvectorConverged {
		t.Error("eigenvector centrality should converge on a connected graph")
	}

	rows, err := e.Store().GetRunCentrality(ctx, a.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != a.Combined.Graph.NodeCount() {
		t.Errorf("stored %d centrality rows, want %d", len(rows), a.Combined.Graph.NodeCount())
	}

	if _, err := e.Analyze(ctx, nil); !errors.Is(err, ErrNoProfiles) {
		t.Errorf("empty analyze: err = %v", err)
	}
}

func TestAnalyzeCohorts(t *testing.T) {
	e, _ := newTestEngine(t)
	ada, bob := fixtures["ada"].Clone(), fixtures["bob"].Clone()
	ada.Cohort, bob.Cohort = "IIT", "NIT"
	a, err := e.Analyze(context.Background(), []profile.Record{ada, bob})
	if err != nil {
		t.Fatal(err)
	}
	if a.Cohorts == nil {
		t.Fatal("expected a cohort network")
	}
	n, ok := a.Cohorts.Graph.Node("Charles Babbage")
	if !ok || n.Kind != graph.KindSharedCoauthor {
		t.Errorf("Babbage should be shared across cohorts, got %+v", n)
	}
}

func TestAnalyzeCanonicalizesWhenAsked(t *testing.T) {
	records := []profile.Record{
		{Name: "Ada", Coauthors: []string{"José García"}},
		{Name: "Bob", Coauthors: []string{"Jose Garcia"}},
	}

	e, _ := newTestEngine(t)
	a, err := e.Analyze(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Pairs) != 0 || len(a.Variants) != 1 {
		t.Errorf("without canonicalization: pairs=%d variants=%d", len(a.Pairs), len(a.Variants))
	}

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(dir, "c.db")
	cfg.OutputDir = dir
	cfg.CanonicalizeNames = true
	ce, err := New(cfg, WithFetcher(profile.FetcherFunc(func(context.Context, string) (*profile.Record, error) {
		return nil, errors.New("unused")
	})))
	if err != nil {
		t.Fatal(err)
	}
	defer ce.Close()
	a, err = ce.Analyze(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Pairs) != 1 || a.Pairs[0].Shared[0] != "José García" {
		t.Errorf("with canonicalization: pairs = %+v", a.Pairs)
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	x := &fakeExporter{}
	e, cfg := newTestEngine(t, WithExporter(x))

	a, err := e.Run(context.Background(), []string{"ada", "bob", "cat"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"index.html", "combined_network.html", "shared_connections.html",
		"ada_lovelace.html", "ada_lovelace.svg", "combined_network_centrality.svg",
		"centrality_ada_lovelace.html", "centrality_bob_boole.html", "centrality_cat_herschel.html",
		"statistics_ada_lovelace.csv", "statistics_bob_boole.csv", "statistics_cat_herschel.csv",
		"profiles.csv", "centrality.csv", "shared_connections.csv", "report.xlsx",
	} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	index, _ := os.ReadFile(filepath.Join(cfg.OutputDir, "index.html"))
	if strings.Index(string(index), "combined_network.html") > strings.Index(string(index), "ada_lovelace.html") {
		t.Error("combined network should be linked first")
	}
	if x.runID != a.RunID || x.nodes != a.Combined.Graph.NodeCount() {
		t.Errorf("exporter got run %q with %d nodes", x.runID, x.nodes)
	}

	// Cat's star: Cat Herschel and Mary Somerville, both with degree 1.
	stats, err := os.ReadFile(filepath.Join(cfg.OutputDir, "statistics_cat_herschel.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(stats)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "Cat Herschel,professor,1.000000") ||
		!strings.HasPrefix(lines[2], "Mary Somerville,coauthor,1.000000") {
		t.Errorf("statistics_cat_herschel.csv:\n%s", stats)
	}
	page, _ := os.ReadFile(filepath.Join(cfg.OutputDir, "centrality_ada_lovelace.html"))
	if !strings.Contains(string(page), "Degree: 0.333") {
		t.Error("centrality page should show each coauthor's degree")
	}
	if !strings.Contains(string(index), "centrality_ada_lovelace.html") {
		t.Error("index should link the centrality pages")
	}
}

func TestRenderKeepsCollidingNamesApart(t *testing.T) {
	e, cfg := newTestEngine(t)
	ctx := context.Background()
	records := []profile.Record{
		{Name: "J. Smith", Coauthors: []string{"Carol"}},
		{Name: "J Smith", Coauthors: []string{"Dan"}},
		{Name: "Combined Network", Coauthors: []string{"Eve"}},
	}
	a, err := e.Analyze(ctx, records)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Render(ctx, a); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Export(ctx, a); err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{a.Combined.Stem: true}
	for _, n := range a.Individual {
		if seen[n.Stem] {
			t.Errorf("stem %q used twice", n.Stem)
		}
		seen[n.Stem] = true
	}
	for file, want := range map[string]string{
		"j_smith.html":              "Carol",
		"j_smith_2.html":            "Dan",
		"combined_network.html":     "Carol",
		"combined_network_2.html":   "Eve",
		"statistics_j_smith.csv":    "Carol",
		"statistics_j_smith_2.csv":  "Dan",
		"centrality_j_smith_2.html": "Dan",
	} {
		b, err := os.ReadFile(filepath.Join(cfg.OutputDir, file))
		if err != nil {
			t.Errorf("missing %s: %v", file, err)
			continue
		}
		if !strings.Contains(string(b), want) {
			t.Errorf("%s does not mention %q", file, want)
		}
	}
	b, _ := os.ReadFile(filepath.Join(cfg.OutputDir, "combined_network_2.html"))
	if strings.Contains(string(b), "Carol") {
		t.Error("combined network overwrote the professor network")
	}
}

func TestSimilarAndNeighborhood(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	if _, err := e.FetchProfiles(ctx, []string{"ada", "bob", "cat"}); err != nil {
		t.Fatal(err)
	}

	sim, err := e.SimilarProfiles(ctx, "ada", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(sim) == 0 || sim[0].Profile.ScholarID != "bob" {
		t.Errorf("most similar to ada should be bob, got %+v", sim)
	}
	if _, err := e.SimilarProfiles(ctx, "nobody", 2); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}

	g, err := e.Neighborhood(ctx, []string{"ada", "cat"}, []string{"Cat Herschel"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasNode("Mary Somerville") || !g.HasNode("Ada Lovelace") || g.HasNode("Charles Babbage") {
		t.Errorf("unexpected neighbourhood nodes: %d", g.NodeCount())
	}
	if _, err := e.Neighborhood(ctx, []string{"nobody"}, nil, 1); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestImportProfilesRejectsUnnamedRecords(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	err := e.ImportProfiles(ctx, []profile.Record{fixtures["ada"], {ScholarID: "anon", Coauthors: []string{"X"}}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	cached, err := e.ListProfiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 0 {
		t.Errorf("cached %d profiles from an invalid batch", len(cached))
	}
}

func TestClosedEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ListProfiles(context.Background()); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("err = %v, want ErrStoreClosed", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
