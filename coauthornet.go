// Package coauthornet builds collaboration networks of academics from their
// public profiles: who each professor works with, which collaborators two
// professors share, and how central every person is in the combined graph.
package coauthornet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/brunobiangulo/coauthornet/graph"
	"github.com/brunobiangulo/coauthornet/graphdb"
	"github.com/brunobiangulo/coauthornet/profile"
	"github.com/brunobiangulo/coauthornet/render"
	"github.com/brunobiangulo/coauthornet/report"
	"github.com/brunobiangulo/coauthornet/store"
)

// Engine is the main entry point: fetch profiles, analyze them, then write
// the visualizations and reports.
type Engine interface {
	// FetchProfiles fetches ids sequentially with the configured delay and
	// caches every profile it gets. Failed IDs are logged and skipped.
	FetchProfiles(ctx context.Context, ids []string) ([]profile.Record, error)

	// ImportProfiles caches records obtained elsewhere, e.g. from a CSV file.
	ImportProfiles(ctx context.Context, records []profile.Record) error

	// Analyze builds every network and its centrality scores and records
	// the run.
	Analyze(ctx context.Context, records []profile.Record) (*Analysis, error)

	// Render writes interactive pages, static images, centrality charts
	// and index.html into the output directory. Returns the written paths.
	Render(ctx context.Context, a *Analysis) ([]string, error)

	// Export writes the CSV and XLSX reports and, when configured, loads
	// the combined network into Neo4j. Returns the written paths.
	Export(ctx context.Context, a *Analysis) ([]string, error)

	// Run is FetchProfiles, Analyze, Render and Export in sequence.
	Run(ctx context.Context, ids []string) (*Analysis, error)

	// ListProfiles returns every cached profile.
	ListProfiles(ctx context.Context) ([]profile.Record, error)

	// SimilarProfiles returns the k cached profiles whose coauthor sets
	// are most alike to the profile with the given scholar ID.
	SimilarProfiles(ctx context.Context, scholarID string, k int) ([]store.SimilarProfile, error)

	// Neighborhood builds the combined network of the cached profiles
	// with the given scholar IDs (all cached profiles when ids is empty)
	// and returns the part within depth hops of the seed names.
	Neighborhood(ctx context.Context, ids, seeds []string, depth int) (*graph.Graph, error)

	// Store returns the underlying store for diagnostic access.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Network is one analyzed graph.
type Network struct {
	RunID      string        `json:"run_id"`
	Name       string        `json:"name"`
	Stem       string        `json:"stem"` // unique file name stem within the output directory
	Graph      *graph.Graph  `json:"graph"`
	Centrality *graph.Report `json:"centrality"`
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	RunID       string                `json:"run_id"` // run of the combined network
	Profiles    []profile.Record      `json:"profiles"`
	Individual  []Network             `json:"individual"`
	Shared      Network               `json:"shared"`
	Combined    Network               `json:"combined"`
	Cohorts     *Network              `json:"cohorts,omitempty"` // only when profiles carry cohorts
	Pairs       []graph.SharedPair    `json:"pairs"`
	Communities []graph.Community     `json:"communities"`
	Variants    []profile.NameVariant `json:"name_variants,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Exporter loads a network into an external graph database.
type Exporter interface {
	Load(ctx context.Context, runID string, g *graph.Graph) error
}

// Option configures New.
type Option func(*engine)

// WithFetcher replaces the scholar client.
func WithFetcher(f profile.Fetcher) Option {
	return func(e *engine) { e.fetcher = f }
}

// WithExporter sets the graph database exporter used by Export,
// overriding Config.Neo4j.
func WithExporter(x Exporter) Option {
	return func(e *engine) { e.exporter = x }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg      Config
	store    *store.Store
	fetcher  profile.Fetcher
	renderer *render.Renderer
	exporter Exporter
	closer   func(context.Context) error
	closed   atomic.Bool
}

// New creates an engine with the given configuration.
func New(cfg Config, opts ...Option) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Centrality.MaxIter == 0 {
		cfg.Centrality.MaxIter = graph.DefaultMaxIter
	}
	if cfg.Centrality.Tolerance == 0 {
		cfg.Centrality.Tolerance = graph.DefaultTolerance
	}

	e := &engine{cfg: cfg}
	for _, o := range opts {
		o(e)
	}

	s, err := store.New(cfg.resolveDBPath(), cfg.VectorDim)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	e.store = s

	if e.fetcher == nil {
		client, err := profile.NewScholarClient(profile.ScholarOptions{
			BaseURL:   cfg.Scholar.BaseURL,
			UserAgent: cfg.Scholar.UserAgent,
			Timeout:   time.Duration(cfg.Scholar.Timeout),
			Source:    cfg.Scholar.Source,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating scholar client: %w", err)
		}
		e.fetcher = client
	}

	if e.exporter == nil && cfg.Neo4j != nil {
		loader, err := graphdb.NewLoader(context.Background(), *cfg.Neo4j)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connecting neo4j: %w", err)
		}
		if err := loader.CreateIndexes(context.Background()); err != nil {
			slog.Warn("graph: creating neo4j indexes failed", "error", err)
		}
		e.exporter = loader
		e.closer = loader.Close
	}

	e.renderer = render.New(cfg.OutputDir)
	return e, nil
}

func (e *engine) check() error {
	if e.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

// FetchProfiles fetches and caches profiles.
func (e *engine) FetchProfiles(ctx context.Context, ids []string) ([]profile.Record, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	records, failures, err := profile.FetchAll(ctx, e.fetcher, ids, time.Duration(e.cfg.FetchDelay))
	if err != nil {
		return records, err
	}
	if len(records) == 0 {
		if len(failures) > 0 {
			return nil, fmt.Errorf("%w: all %d profiles failed, first: %w", ErrFetchFailed, len(failures), failures[0])
		}
		return nil, ErrNoProfiles
	}
	if len(failures) > 0 {
		slog.Warn("fetch: some profiles were skipped", "fetched", len(records), "failed", len(failures))
	}
	if err := e.ImportProfiles(ctx, records); err != nil {
		return records, err
	}
	return records, nil
}

// ValidateRecords rejects records that cannot be cached or analyzed.
func ValidateRecords(records []profile.Record) error {
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: record %d (id %q) has no name", ErrInvalidInput, i, r.ScholarID)
		}
	}
	return nil
}

// ImportProfiles upserts records into the profile cache. Nothing is stored
// when any record is invalid.
func (e *engine) ImportProfiles(ctx context.Context, records []profile.Record) error {
	if err := e.check(); err != nil {
		return err
	}
	if err := ValidateRecords(records); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := e.store.UpsertProfile(ctx, r); err != nil {
			return fmt.Errorf("caching profile %s: %w", r.Name, err)
		}
	}
	return nil
}

// distinctProfessors keeps one record per professor name, appending the
// coauthors of later duplicates to the first.
func distinctProfessors(records []profile.Record) []profile.Record {
	var out []profile.Record
	at := make(map[string]int)
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if i, ok := at[r.Name]; ok {
			slog.Warn("analyze: merging profiles with the same name", "name", r.Name, "scholar_id", r.ScholarID)
			out[i].Coauthors = append(out[i].Coauthors, r.Coauthors...)
			continue
		}
		at[r.Name] = len(out)
		out = append(out, r.Clone())
	}
	return out
}

// Analyze builds the individual, shared, combined and cohort networks.
func (e *engine) Analyze(ctx context.Context, records []profile.Record) (*Analysis, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	var variants []profile.NameVariant
	if e.cfg.CanonicalizeNames {
		records, variants = profile.Canonicalize(records)
	} else {
		variants = profile.WarnVariants(records)
	}
	profs := distinctProfessors(records)
	if len(profs) == 0 {
		return nil, ErrNoProfiles
	}

	a := &Analysis{Profiles: profs, Variants: variants, CreatedAt: time.Now().UTC()}
	start := time.Now()

	for i := range profs {
		g := graph.BuildIndividual(&profs[i])
		a.Individual = append(a.Individual, e.network(profs[i].Name, g))
	}
	a.Shared = e.network("Shared Connections", graph.BuildShared(profs))
	a.Combined = e.network("Combined Network", graph.BuildCombined(profs))
	for _, p := range profs {
		if p.Cohort != "" {
			n := e.network("Cohort Network", graph.BuildCohorts(profs))
			a.Cohorts = &n
			break
		}
	}
	a.RunID = a.Combined.RunID
	assignStems(a)
	a.Pairs = graph.SharedPairs(a.Shared.Graph)
	a.Communities = graph.DetectCommunities(a.Combined.Graph)

	if err := e.persist(ctx, a); err != nil {
		return nil, err
	}

	slog.Info("analysis complete",
		"run", a.RunID,
		"professors", len(profs),
		"nodes", a.Combined.Graph.NodeCount(),
		"edges", a.Combined.Graph.EdgeCount(),
		"shared_pairs", len(a.Pairs),
		"communities", len(a.Communities),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return a, nil
}

func (e *engine) network(name string, g *graph.Graph) Network {
	return Network{
		RunID:      uuid.NewString(),
		Name:       name,
		Graph:      g,
		Centrality: graph.Compute(g, e.cfg.Centrality),
	}
}

// persist stores one run row plus centrality rows per network.
func (e *engine) persist(ctx context.Context, a *Analysis) error {
	type kindNet struct {
		kind string
		n    *Network
	}
	nets := []kindNet{{"shared", &a.Shared}, {"combined", &a.Combined}}
	if a.Cohorts != nil {
		nets = append(nets, kindNet{"cohorts", a.Cohorts})
	}
	for i := range a.Individual {
		nets = append(nets, kindNet{"individual", &a.Individual[i]})
	}

	for _, net := range nets {
		n := net.n
		err := e.store.InsertRun(ctx, store.Run{
			ID:                   n.RunID,
			Kind:                 net.kind,
			Professors:           len(n.Graph.NodesOfKind(graph.KindProfessor)),
			Nodes:                n.Graph.NodeCount(),
			Edges:                n.Graph.EdgeCount(),
			EigenvectorConverged: n.Centrality.EigenvectorConverged,
			Warnings:             n.Centrality.Warnings,
			CreatedAt:            a.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		rows := make([]store.CentralityRow, 0, n.Graph.NodeCount())
		for _, r := range report.CentralityRows(n.Graph, n.Centrality) {
			rows = append(rows, store.CentralityRow{
				Node:        r.Node,
				Kind:        string(r.Kind),
				Degree:      r.Degree,
				Closeness:   r.Closeness,
				Betweenness: r.Betweenness,
				Eigenvector: r.Eigenvector,
			})
		}
		if err := e.store.InsertCentrality(ctx, n.RunID, rows); err != nil {
			return fmt.Errorf("recording centrality: %w", err)
		}
	}
	return nil
}

// reservedStems are taken by the fixed-name outputs.
var reservedStems = []string{"index", "profiles", "centrality", "report"}

// assignStems gives every network of the analysis a distinct file name stem, in
// index order, unless Analyze already did.
func assignStems(a *Analysis) {
	if a.Combined.Stem != "" {
		return
	}
	stems := render.NewStems(reservedStems...)
	a.Combined.Stem = stems.Next(a.Combined.Name)
	a.Shared.Stem = stems.Next(a.Shared.Name)
	if a.Cohorts != nil {
		a.Cohorts.Stem = stems.Next(a.Cohorts.Name)
	}
	for i := range a.Individual {
		a.Individual[i].Stem = stems.Next(a.Individual[i].Name)
	}
}

// Render writes the visualizations. The index links the combined network
// first, then the shared and cohort networks, then each professor along
// with its centrality page.
func (e *engine) Render(ctx context.Context, a *Analysis) ([]string, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	assignStems(a)
	var (
		paths []string
		links []render.Link
	)
	draw := func(n Network, title string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := e.renderer.Interactive(n.Stem, title, n.Graph)
		if err != nil {
			return err
		}
		paths = append(paths, p)
		links = append(links, render.Link{Title: title, Href: filepath.Base(p)})

		if !e.cfg.StaticImages {
			return nil
		}
		svg, err := e.renderer.Static(n.Stem, n.Name, n.Graph)
		if err != nil {
			return err
		}
		chart, err := e.renderer.CentralityChart(n.Stem, n.Name, n.Centrality)
		if err != nil {
			return err
		}
		paths = append(paths, svg, chart)
		return nil
	}

	if err := draw(a.Combined, "Combined Network"); err != nil {
		return paths, err
	}
	if err := draw(a.Shared, "Shared Connections"); err != nil {
		return paths, err
	}
	if a.Cohorts != nil {
		if err := draw(*a.Cohorts, "Cohort Network"); err != nil {
			return paths, err
		}
	}
	for _, n := range a.Individual {
		if err := draw(n, n.Name+"'s Network"); err != nil {
			return paths, err
		}
		p, err := e.renderer.CentralityPage(n.Stem, n.Name, n.Graph, n.Centrality)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
		links = append(links, render.Link{Title: n.Name + "'s Centrality", Href: filepath.Base(p)})
	}

	index, err := e.renderer.Index(links)
	if err != nil {
		return paths, err
	}
	paths = append(paths, index)
	slog.Info("render: visualizations written", "dir", e.cfg.OutputDir, "files", len(paths))
	return paths, nil
}

// Export writes profiles.csv, centrality.csv, shared_connections.csv,
// statistics_<professor>.csv per individual network and report.xlsx, then
// hands the combined network to the exporter if any.
func (e *engine) Export(ctx context.Context, a *Analysis) ([]string, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	assignStems(a)
	dir := e.cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var paths []string
	write := func(name string, fn func(f *os.File) error) error {
		p := filepath.Join(dir, name)
		f, err := os.Create(p)
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", name, err)
		}
		paths = append(paths, p)
		return nil
	}

	if err := write("profiles.csv", func(f *os.File) error {
		return profile.WriteCSV(f, a.Profiles)
	}); err != nil {
		return paths, err
	}
	if err := write("centrality.csv", func(f *os.File) error {
		return report.WriteCentralityCSV(f, a.Combined.Graph, a.Combined.Centrality)
	}); err != nil {
		return paths, err
	}
	if err := write("shared_connections.csv", func(f *os.File) error {
		return report.WriteSharedCSV(f, a.Pairs)
	}); err != nil {
		return paths, err
	}
	for _, n := range a.Individual {
		if err := write("statistics_"+n.Stem+".csv", func(f *os.File) error {
			return report.WriteCentralityCSV(f, n.Graph, n.Centrality)
		}); err != nil {
			return paths, err
		}
	}

	xlsx := filepath.Join(dir, "report.xlsx")
	if err := report.WriteWorkbook(xlsx, report.Summary{
		Profiles:   a.Profiles,
		Graph:      a.Combined.Graph,
		Centrality: a.Combined.Centrality,
		Pairs:      a.Pairs,
	}); err != nil {
		return paths, err
	}
	paths = append(paths, xlsx)

	if e.exporter != nil {
		if err := e.exporter.Load(ctx, a.RunID, a.Combined.Graph); err != nil {
			return paths, fmt.Errorf("exporting graph: %w", err)
		}
	}
	return paths, nil
}

// Run executes the whole pipeline.
func (e *engine) Run(ctx context.Context, ids []string) (*Analysis, error) {
	records, err := e.FetchProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	a, err := e.Analyze(ctx, records)
	if err != nil {
		return nil, err
	}
	if _, err := e.Render(ctx, a); err != nil {
		return a, fmt.Errorf("rendering: %w", err)
	}
	if _, err := e.Export(ctx, a); err != nil {
		return a, fmt.Errorf("exporting: %w", err)
	}
	return a, nil
}

// ListProfiles returns the cached profiles ordered by name.
func (e *engine) ListProfiles(ctx context.Context) ([]profile.Record, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.store.ListProfiles(ctx)
}

// SimilarProfiles ranks cached profiles by coauthor overlap.
func (e *engine) SimilarProfiles(ctx context.Context, scholarID string, k int) ([]store.SimilarProfile, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	out, err := e.store.SimilarProfiles(ctx, scholarID, k)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, scholarID)
	}
	return out, err
}

// Neighborhood returns the ego network of seeds in the combined graph.
func (e *engine) Neighborhood(ctx context.Context, ids, seeds []string, depth int) (*graph.Graph, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	var records []profile.Record
	if len(ids) == 0 {
		all, err := e.store.ListProfiles(ctx)
		if err != nil {
			return nil, err
		}
		records = all
	}
	for _, id := range ids {
		r, err := e.store.GetProfile(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	if len(records) == 0 {
		return nil, ErrNoProfiles
	}
	g := graph.BuildCombined(records)
	if len(seeds) == 0 {
		return g, nil
	}
	return graph.Neighborhood(g, seeds, depth), nil
}

// Store returns the underlying store.
func (e *engine) Store() *store.Store {
	return e.store
}

// Close releases the store and the graph database connection.
func (e *engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	var errs []error
	if e.closer != nil {
		errs = append(errs, e.closer(context.Background()))
	}
	errs = append(errs, e.store.Close())
	return errors.Join(errs...)
}
